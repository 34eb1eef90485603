package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient connects an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueRefdataWarmup queues a warmup of lists, or of every list when none are named.
func (c *Client) EnqueueRefdataWarmup(ctx context.Context, reason string, lists ...string) (*asynq.TaskInfo, error) {
	task, err := NewRefdataWarmupTask(reason, lists...)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Timeout(2*time.Minute))
}

func (c *Client) Close() error {
	return c.client.Close()
}
