package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"yt-analytics/domain/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	raw, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(raw)
	return &s3.PutObjectOutput{}, nil
}

func testSnapshot() *model.Snapshot {
	title := "A & B"
	return &model.Snapshot{
		RunID:    "run-1",
		Date:     "2026-10-17",
		Platform: "youtube",
		Path:     "data/2026-10-17-youtube-analytics.json",
		Records: []model.StandardRecord{
			{Platform: "youtube", PostID: "abc123", Hashtags: []string{}, Extra: model.RecordExtra{Title: &title}},
		},
	}
}

func TestSnapshotBucket_Archive(t *testing.T) {
	putter := &fakePutter{}
	bucket := NewSnapshotBucket(putter, "analytics", "snapshots")

	require.NoError(t, bucket.Archive(context.Background(), testSnapshot()))

	require.NotNil(t, putter.input)
	assert.Equal(t, "analytics", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "snapshots/youtube/2026-10-17-youtube-analytics.json", aws.ToString(putter.input.Key))
	assert.Equal(t, "application/json", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "run-1", putter.input.Metadata["run-id"])
	assert.Contains(t, putter.body, `"title": "A & B"`)
}

func TestSnapshotBucket_ArchiveError(t *testing.T) {
	bucket := NewSnapshotBucket(&fakePutter{err: errors.New("AccessDenied")}, "analytics", "")

	err := bucket.Archive(context.Background(), testSnapshot())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://analytics/youtube/2026-10-17-youtube-analytics.json")
}
