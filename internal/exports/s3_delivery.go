package exports

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
)

// Object is an uploaded artifact.
type Object struct {
	Key       string
	Checksum  string
	SizeBytes int64
}

// S3Delivery uploads rendered reports to S3-compatible object storage and
// issues presigned download URLs.
type S3Delivery struct {
	client       *s3.Client
	bucket       string
	signedURLTTL time.Duration
	logger       *zap.Logger
}

// S3Config holds object storage settings.
type S3Config struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	SignedURLTTL time.Duration
	Logger       *zap.Logger
}

// NewS3Delivery creates an S3 delivery adapter. A custom endpoint switches
// the client to path-style addressing, which MinIO and most S3-compatible
// stores require.
func NewS3Delivery(ctx context.Context, cfg S3Config) (*S3Delivery, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &S3Delivery{
		client:       client,
		bucket:       cfg.Bucket,
		signedURLTTL: ttl,
		logger:       logger,
	}, nil
}

// ObjectKey is where a job's artifact is stored:
// reports/{artist_id}/{report_id}/{job_id}.{ext}.
func ObjectKey(job domain.ExportJob, artifact reports.Artifact) string {
	return fmt.Sprintf("reports/%s/%s/%s.%s", job.ArtistID, job.ReportID, job.JobID, artifact.Extension)
}

// Checksum is the hex SHA-256 of body.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Upload stores the artifact of job. downloadName becomes the object's
// Content-Disposition filename.
func (s *S3Delivery) Upload(ctx context.Context, job domain.ExportJob, artifact reports.Artifact, downloadName string) (Object, error) {
	obj := Object{
		Key:       ObjectKey(job, artifact),
		Checksum:  Checksum(artifact.Body),
		SizeBytes: int64(len(artifact.Body)),
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(obj.Key),
		Body:               bytes.NewReader(artifact.Body),
		ContentType:        aws.String(artifact.ContentType),
		ContentLength:      aws.Int64(obj.SizeBytes),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", downloadName)),
		Metadata: map[string]string{
			"checksum":  obj.Checksum,
			"artist-id": job.ArtistID.String(),
			"report-id": job.ReportID.String(),
			"job-id":    job.JobID.String(),
		},
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload %s export: %w", job.Format, err)
	}

	s.logger.Info("uploaded report export",
		zap.String("artist_id", job.ArtistID.String()),
		zap.String("job_id", job.JobID.String()),
		zap.String("key", obj.Key),
		zap.String("checksum", obj.Checksum),
		zap.Int64("size_bytes", obj.SizeBytes),
	)
	return obj, nil
}

// SignedURL returns a presigned GET URL for key.
func (s *S3Delivery) SignedURL(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.signedURLTTL
	})
	if err != nil {
		return "", fmt.Errorf("presign get request: %w", err)
	}
	return req.URL, nil
}
