package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"yt-analytics/domain/dto"

	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestSnapshotPubSub_Notify(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := NewPubSub(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	defer client.Close()

	notifier := NewSnapshotPubSub(client, "snapshots")
	event := dto.SnapshotEvent{
		RunID:       "run-1",
		Platform:    "youtube",
		Date:        "2026-10-17",
		Path:        "data/2026-10-17-youtube-analytics.json",
		RecordCount: 3,
		WrittenAt:   time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC),
	}

	require.NoError(t, notifier.Notify(ctx, event))

	messages := srv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "run-1", messages[0].Attributes["run_id"])
	var decoded dto.SnapshotEvent
	require.NoError(t, json.Unmarshal(messages[0].Data, &decoded))
	assert.Equal(t, event, decoded)
	assert.Equal(t, "pubsub", notifier.Name())
}
