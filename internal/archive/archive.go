// Package archive keeps a copy of every raw upload file in S3 so a
// bad consolidation run can be replayed from the original bytes.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/edupainel/leads-panel/internal/config"
)

// Uploader archives raw upload files to an S3 bucket
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3 uploader, or nil when archival is disabled
func New(ctx context.Context, cfg config.ArchiveConfig) (*Uploader, error) {
	if !cfg.Enabled || cfg.S3Bucket == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Uploader{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Archive stores the raw file bytes under
// <prefix>/<yyyy-mm-dd>/<loadID>/<filename>.
func (u *Uploader) Archive(ctx context.Context, loadID, filename string, data []byte) (string, error) {
	key := path.Join(u.prefix, time.Now().UTC().Format("2006-01-02"), loadID, path.Base(filename))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("archiving upload to s3://%s/%s: %w", u.bucket, key, err)
	}
	return key, nil
}
