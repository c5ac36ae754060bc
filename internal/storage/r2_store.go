package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/logging"
)

var ErrNotConfigured = errors.New("R2 configuration incomplete")

// R2Store keeps downloaded kit archives in Cloudflare R2 and hands out
// presigned links to them.
type R2Store struct {
	s3Client   *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	expiry     time.Duration
	logger     *zap.Logger
}

func NewR2Store(ctx context.Context, cfg config.R2Config, logger *zap.Logger) (*R2Store, error) {
	if cfg.AccountID == "" {
		return nil, ErrNotConfigured
	}
	return newStore(ctx, cfg, fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID), logger)
}

func newStore(ctx context.Context, cfg config.R2Config, endpoint string, logger *zap.Logger) (*R2Store, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &R2Store{
		s3Client:   s3Client,
		presigner:  s3.NewPresignClient(s3Client),
		bucketName: cfg.BucketName,
		expiry:     expiry,
		logger:     logging.OrNop(logger).Named("r2"),
	}, nil
}

// PutArchive uploads body under key and returns a presigned GET URL that
// downloads it as an attachment.
func (s *R2Store) PutArchive(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucketName),
		Key:                aws.String(key),
		Body:               body,
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(key))),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.s3Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	s.logger.Debug("archive stored", zap.String("key", key), zap.Int64("size", size))

	return s.SignedURL(ctx, key)
}

// SignedURL returns a temporary download link for key.
func (s *R2Store) SignedURL(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

func (s *R2Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}
