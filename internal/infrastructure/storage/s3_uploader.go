package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"ScriptProducer/internal/config"
	"ScriptProducer/internal/ports"
)

type putObjectAPI interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Uploader implements ports.MediaUploader by copying artifacts into a bucket.
type S3Uploader struct {
	client        putObjectAPI
	bucket        string
	prefix        string
	publicBaseURL string
}

var _ ports.MediaUploader = (*S3Uploader)(nil)

// NewS3Uploader opens an AWS session for the configured region.
func NewS3Uploader(cfg config.S3Config) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return newS3Uploader(s3.New(sess), cfg), nil
}

func newS3Uploader(client putObjectAPI, cfg config.S3Config) *S3Uploader {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		publicBaseURL: base,
	}
}

// Upload stores the local file under prefix/key and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(localPath), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", filepath.Base(localPath), err)
	}

	objectKey := key
	if u.prefix != "" {
		objectKey = path.Join(u.prefix, key)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(objectKey),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", u.bucket, objectKey, err)
	}
	return u.publicBaseURL + "/" + objectKey, nil
}
