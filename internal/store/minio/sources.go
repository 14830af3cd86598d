package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// SourcePrefix is where a project's C++ files live inside the bucket.
func SourcePrefix(projectID uuid.UUID) string {
	return "sources/" + projectID.String() + "/"
}

// ArtifactObject is the object key for a run's packaged test artifacts.
func ArtifactObject(runID uuid.UUID) string {
	return "artifacts/" + runID.String() + "/tests.zip"
}

// SaveSourceSet replaces the stored sources for a project with the given
// set. Existing objects under the prefix are removed first so a re-upload
// cannot leave stale files behind.
func (c *Client) SaveSourceSet(ctx context.Context, projectID uuid.UUID, source testgen.SourceSet) error {
	prefix := SourcePrefix(projectID)
	if err := c.RemovePrefix(ctx, prefix); err != nil {
		return err
	}
	for _, name := range source.Files() {
		content := source[name]
		if err := c.UploadFile(ctx, prefix+name, strings.NewReader(content), int64(len(content))); err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
	}
	return nil
}

// LoadSourceSet reads a project's sources back out of the bucket.
func (c *Client) LoadSourceSet(ctx context.Context, projectID uuid.UUID) (testgen.SourceSet, error) {
	prefix := SourcePrefix(projectID)
	keys, err := c.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	source := testgen.SourceSet{}
	for _, key := range keys {
		rc, err := c.DownloadFile(ctx, key)
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		source[strings.TrimPrefix(key, prefix)] = string(content)
	}
	return source, nil
}
