package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"yt-analytics/domain/model"
	"yt-analytics/infrastructure/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BucketConfig locates the bucket; Endpoint is set for S3-compatible stores such as R2 or MinIO
type BucketConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// SnapshotBucket uploads the snapshot JSON to an S3 compatible bucket
type SnapshotBucket struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Client builds an s3 client from static keys, or the default chain when keys are empty
func NewS3Client(ctx context.Context, cfg BucketConfig) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewSnapshotBucket(client objectPutter, bucket, prefix string) *SnapshotBucket {
	return &SnapshotBucket{client: client, bucket: bucket, prefix: prefix}
}

func (b *SnapshotBucket) Name() string { return "s3" }

// ObjectKey mirrors the local file name under the prefix
func (b *SnapshotBucket) ObjectKey(snapshot *model.Snapshot) string {
	return path.Join(b.prefix, snapshot.Platform, path.Base(snapshot.Path))
}

// Archive uploads the records with the same layout as the local file
func (b *SnapshotBucket) Archive(ctx context.Context, snapshot *model.Snapshot) error {
	if b.client == nil || snapshot == nil {
		return nil
	}
	records := snapshot.Records
	if records == nil {
		records = []model.StandardRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := b.ObjectKey(snapshot)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"run-id": snapshot.RunID,
		},
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while uploading snapshot")
		return fmt.Errorf("put s3://%s/%s: %w", b.bucket, key, err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"bucket": b.bucket,
		"key":    key,
	}).Info("Snapshot uploaded")
	return nil
}
