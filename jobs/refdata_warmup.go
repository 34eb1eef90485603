package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/finoracle/backoffice/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer refreshes cached reference lists.
type Warmer interface {
	Names() []string
	Warm(ctx context.Context, names ...string) map[string]error
}

// RefdataWarmupJob keeps the select sources hot so create forms open without
// waiting on the remote service.
type RefdataWarmupJob struct {
	Loader  Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRefdataWarmupJob wires dependencies for the warmup handler.
func NewRefdataWarmupJob(loader Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *RefdataWarmupJob {
	return &RefdataWarmupJob{Loader: loader, Logger: logger, Metrics: metrics}
}

// Handle processes refdata warmup tasks.
func (j *RefdataWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Loader == nil {
		return errors.New("refdata warmup: handler not configured")
	}
	var payload RefdataWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("refdata warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics().Track(TaskRefdataWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	names := payload.Lists
	if len(names) == 0 {
		names = j.Loader.Names()
	}
	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting refdata warmup", slog.Any("lists", names))
	started := time.Now()

	failures := j.Loader.Warm(ctx, names...)
	var errs []error
	for _, name := range names {
		err, failed := failures[name]
		j.metrics().AddWarmed(name, !failed)
		if failed {
			logger.Warn("warm list", slog.String("list", name), slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Info("completed refdata warmup", slog.Int("lists", len(names)), slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *RefdataWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRefdataWarmup))
	}
	return slog.Default().With(slog.String("job", TaskRefdataWarmup))
}

func (j *RefdataWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
