package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"yt-analytics/domain/dto"
	"yt-analytics/infrastructure/logger"

	"github.com/hibiken/asynq"
)

// TaskTypeSnapshotWritten is the asynq task type consumers register for
const TaskTypeSnapshotWritten = "snapshot:written"

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SnapshotQueue enqueues a task per written snapshot
type SnapshotQueue struct {
	client taskEnqueuer
	queue  string
}

// NewAsynqClient connects an asynq client to redisAddr
func NewAsynqClient(redisAddr string) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
}

func NewSnapshotQueue(client taskEnqueuer, queue string) *SnapshotQueue {
	if queue == "" {
		queue = "default"
	}
	return &SnapshotQueue{client: client, queue: queue}
}

func (q *SnapshotQueue) Name() string { return "asynq" }

// NewSnapshotTask builds the task carrying the event as JSON
func NewSnapshotTask(event dto.SnapshotEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSnapshotWritten, payload), nil
}

// Notify enqueues the snapshot task with the run id as task id
func (q *SnapshotQueue) Notify(ctx context.Context, event dto.SnapshotEvent) error {
	task, err := NewSnapshotTask(event)
	if err != nil {
		return fmt.Errorf("build snapshot task: %w", err)
	}
	info, err := q.client.EnqueueContext(ctx, task, asynq.Queue(q.queue), asynq.TaskID(event.RunID))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while enqueue snapshot task")
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"taskId": info.ID,
		"queue":  info.Queue,
	}).Info("Snapshot task enqueued")
	return nil
}
