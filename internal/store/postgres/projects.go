package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Project is a registered C++ codebase awaiting test generation. Its
// sources live in object storage under the sources/<id>/ prefix.
type Project struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	FileCount   int32
	LineCount   int32
	Status      string // created, ready, importing
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateProjectParams struct {
	Name        string
	Slug        string
	Description string
}

const projectColumns = `id, name, slug, COALESCE(description, ''), file_count, line_count, status, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description,
		&p.FileCount, &p.LineCount, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO projects (id, name, slug, description, status)
		 VALUES ($1, $2, $3, NULLIF($4, ''), 'created')
		 RETURNING `+projectColumns,
		uuid.New(), arg.Name, arg.Slug, arg.Description)
	return scanProject(row)
}

func (q *Queries) GetProject(ctx context.Context, id uuid.UUID) (Project, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug)
	return scanProject(row)
}

func (q *Queries) ListProjects(ctx context.Context, limit, offset int64) ([]Project, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (q *Queries) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

// MarkProjectReady records the source inventory after a successful upload
// or import and flips the project into the ready state.
func (q *Queries) MarkProjectReady(ctx context.Context, id uuid.UUID, fileCount, lineCount int32) error {
	_, err := q.db.Exec(ctx,
		`UPDATE projects
		 SET status = 'ready', file_count = $2, line_count = $3, updated_at = NOW()
		 WHERE id = $1`,
		id, fileCount, lineCount)
	return err
}

type UpdateProjectParams struct {
	ID          uuid.UUID
	Name        string
	Description string
}

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx,
		`UPDATE projects
		 SET name = $2, description = NULLIF($3, ''), updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+projectColumns,
		arg.ID, arg.Name, arg.Description)
	return scanProject(row)
}

func (q *Queries) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}
