// Package proofs сохраняет изображения подтверждения оплаты в S3-совместимом хранилище.
package proofs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/magabrotheeeer/trading-academy/internal/config"
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
)

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ObjectPutter часть API клиента S3, нужная для загрузки.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store загружает подтверждения оплаты в bucket.
type Store struct {
	client  ObjectPutter
	bucket  string
	maxSize int64
}

// New создаёт Store поверх готового клиента.
func New(client ObjectPutter, bucket string, maxSize int64) *Store {
	return &Store{client: client, bucket: bucket, maxSize: maxSize}
}

// NewS3Client создаёт клиента S3 по настройкам. Если заданы ключи доступа,
// используются они, иначе стандартная цепочка учётных данных AWS.
func NewS3Client(ctx context.Context, cfg config.Proofs) (*s3.Client, error) {
	const op = "proofs.NewS3Client"

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload проверяет размер и тип файла и сохраняет его. Возвращает ключ объекта.
func (s *Store) Upload(ctx context.Context, username string, r io.Reader) (string, error) {
	const op = "proofs.Upload"

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(data) == 0 {
		return "", apperr.Validation("proof file is empty")
	}
	if int64(len(data)) > s.maxSize {
		return "", apperr.Validation("proof file is larger than %d bytes", s.maxSize)
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", apperr.Validation("unsupported proof file type %s", contentType)
	}

	key := path.Join("proofs", slug.Make(username), uuid.NewString()+ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}
