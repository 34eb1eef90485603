package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRefdataWarmup preloads the reference lists into the Redis cache.
	TaskRefdataWarmup = "refdata:warmup"
)

// RefdataWarmupPayload selects the lists to warm; empty means all of them.
type RefdataWarmupPayload struct {
	Lists  []string `json:"lists,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// NewRefdataWarmupTask constructs the warmup task.
func NewRefdataWarmupTask(reason string, lists ...string) (*asynq.Task, error) {
	data, err := json.Marshal(RefdataWarmupPayload{Lists: lists, Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefdataWarmup, data), nil
}
