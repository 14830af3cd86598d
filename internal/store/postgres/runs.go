package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GenerationRun tracks one pass of the generate/verify/repair pipeline for
// a project. Report carries the final report JSON once the run finishes.
type GenerationRun struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Framework   string
	Model       string
	Status      string // queued, running, succeeded, failed
	Iterations  int32
	Coverage    *float64
	Report      []byte
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

type CreateRunParams struct {
	ProjectID uuid.UUID
	Framework string
	Model     string
}

const runColumns = `id, project_id, framework, COALESCE(model, ''), status, iterations,
	coverage, report, COALESCE(error, ''), created_at, started_at, completed_at`

func scanRun(row interface{ Scan(...any) error }) (GenerationRun, error) {
	var r GenerationRun
	err := row.Scan(&r.ID, &r.ProjectID, &r.Framework, &r.Model, &r.Status,
		&r.Iterations, &r.Coverage, &r.Report, &r.Error,
		&r.CreatedAt, &r.StartedAt, &r.CompletedAt)
	return r, err
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (GenerationRun, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO generation_runs (id, project_id, framework, model, status)
		 VALUES ($1, $2, $3, NULLIF($4, ''), 'queued')
		 RETURNING `+runColumns,
		uuid.New(), arg.ProjectID, arg.Framework, arg.Model)
	return scanRun(row)
}

func (q *Queries) GetRun(ctx context.Context, id uuid.UUID) (GenerationRun, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+runColumns+` FROM generation_runs WHERE id = $1`, id)
	return scanRun(row)
}

func (q *Queries) ListRunsByProject(ctx context.Context, projectID uuid.UUID, limit, offset int64) ([]GenerationRun, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+runColumns+`
		 FROM generation_runs
		 WHERE project_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GenerationRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// LatestSucceededRun returns the most recent successful run for a project,
// used by the artifact download endpoint when no run ID is given.
func (q *Queries) LatestSucceededRun(ctx context.Context, projectID uuid.UUID) (GenerationRun, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+runColumns+`
		 FROM generation_runs
		 WHERE project_id = $1 AND status = 'succeeded'
		 ORDER BY completed_at DESC
		 LIMIT 1`,
		projectID)
	return scanRun(row)
}

func (q *Queries) MarkRunRunning(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE generation_runs
		 SET status = 'running', started_at = NOW()
		 WHERE id = $1`,
		id)
	return err
}

type CompleteRunParams struct {
	ID         uuid.UUID
	Status     string
	Iterations int32
	Coverage   *float64
	Report     []byte
}

// CompleteRun records the terminal state of a run along with its report.
func (q *Queries) CompleteRun(ctx context.Context, arg CompleteRunParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE generation_runs
		 SET status = $2, iterations = $3, coverage = $4, report = $5, completed_at = NOW()
		 WHERE id = $1`,
		arg.ID, arg.Status, arg.Iterations, arg.Coverage, arg.Report)
	return err
}

// FailRun marks a run as failed with an operational error message, used
// when the pipeline aborts before producing a report.
func (q *Queries) FailRun(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE generation_runs
		 SET status = 'failed', error = $2, completed_at = NOW()
		 WHERE id = $1`,
		id, errMsg)
	return err
}
