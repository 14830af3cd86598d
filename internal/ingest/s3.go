package ingest

import (
	"context"
	"fmt"
	"io"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/testforge-labs/testforge/internal/config"
	"github.com/testforge-labs/testforge/internal/testgen"
)

// S3Importer pulls C++ sources from an S3-compatible bucket.
type S3Importer struct {
	client *s3.Client
	bucket string
}

// NewS3Importer creates an importer. Works with both AWS S3 and MinIO.
func NewS3Importer(cfg config.S3Config) (*S3Importer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		}
	})

	return &S3Importer{client: client, bucket: cfg.Bucket}, nil
}

// Import lists every object under the prefix and reads the C++ files into
// a source set keyed by path relative to the prefix.
func (s *S3Importer) Import(ctx context.Context, prefix string) (testgen.SourceSet, error) {
	source := testgen.SourceSet{}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			key := *obj.Key
			if key == "" || key[len(key)-1] == '/' {
				continue
			}

			rel := relativeKey(key, prefix)
			if skipEntry(rel) || !IsCppSource(rel) {
				continue
			}

			content, err := s.readObject(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("download %s: %w", key, err)
			}
			source[rel] = content
		}
	}

	if len(source) == 0 {
		return nil, ErrNoSourceFiles
	}
	return source, nil
}

func (s *S3Importer) readObject(ctx context.Context, key string) (string, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func relativeKey(key, prefix string) string {
	rel := key
	if prefix != "" && len(key) > len(prefix) && key[:len(prefix)] == prefix {
		rel = key[len(prefix):]
	}
	for len(rel) > 0 && rel[0] == '/' {
		rel = rel[1:]
	}
	return path.Clean(rel)
}
