package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"path"

	"hevruta/hevruta/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(cfg config.Config) (*MinIOClient, error) {
	// Insecure for local (no HTTPS)
	bucket := cfg.MinIOBucket
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOClient{client: client, bucket: bucket}, nil
}

// PutPDF stores a rendered document under a content-addressed key so
// re-exporting identical content overwrites rather than accumulates.
func (m *MinIOClient) PutPDF(ctx context.Context, data []byte) (string, error) {
	hash := sha256.Sum256(data)
	key := path.Join("pdfs", fmt.Sprintf("%x.pdf", hash[:16]))

	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *MinIOClient) GetPDF(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
