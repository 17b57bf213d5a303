package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"yt-analytics/domain/dto"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.task = task
	f.opts = opts
	return &asynq.TaskInfo{ID: "run-1", Queue: "analytics", Type: task.Type()}, nil
}

func TestSnapshotQueue_Notify(t *testing.T) {
	enq := &fakeEnqueuer{}
	event := dto.SnapshotEvent{RunID: "run-1", Platform: "youtube", Date: "2026-10-17", RecordCount: 4}

	require.NoError(t, NewSnapshotQueue(enq, "analytics").Notify(context.Background(), event))

	require.NotNil(t, enq.task)
	assert.Equal(t, TaskTypeSnapshotWritten, enq.task.Type())
	var decoded dto.SnapshotEvent
	require.NoError(t, json.Unmarshal(enq.task.Payload(), &decoded))
	assert.Equal(t, event, decoded)

	values := map[asynq.OptionType]interface{}{}
	for _, o := range enq.opts {
		values[o.Type()] = o.Value()
	}
	assert.Equal(t, "analytics", values[asynq.QueueOpt])
	assert.Equal(t, "run-1", values[asynq.TaskIDOpt])
}

func TestSnapshotQueue_NotifyError(t *testing.T) {
	err := NewSnapshotQueue(&fakeEnqueuer{err: asynq.ErrTaskIDConflict}, "").Notify(context.Background(), dto.SnapshotEvent{RunID: "run-1"})

	assert.True(t, errors.Is(err, asynq.ErrTaskIDConflict))
}
