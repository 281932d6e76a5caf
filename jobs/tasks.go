// Package jobs defines the background tasks and the Asynq worker that runs
// them: finance review nudges, dispatch notifications and the nightly
// idempotency key sweep.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFinanceReview nudges Finance about a payment awaiting review.
	TaskFinanceReview = "finance:review"
	// TaskDispatchNotify tells the Dispatch floor about a fresh handoff.
	TaskDispatchNotify = "dispatch:notify"
	// TaskIdempotencyCleanup sweeps expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// OrderPayload carries the order an event concerns.
type OrderPayload struct {
	OrderNumber string `json:"orderNumber"`
}

// NewFinanceReviewTask constructs a finance review task.
func NewFinanceReviewTask(orderNumber string) (*asynq.Task, error) {
	data, err := json.Marshal(OrderPayload{OrderNumber: orderNumber})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFinanceReview, data), nil
}

// NewDispatchNotifyTask constructs a dispatch notification task.
func NewDispatchNotifyTask(orderNumber string) (*asynq.Task, error) {
	data, err := json.Marshal(OrderPayload{OrderNumber: orderNumber})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDispatchNotify, data), nil
}

// NewIdempotencyCleanupTask constructs the sweep task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// NotifyJob fans order events out to the department channels. Delivery is a
// log line today; the payload shape is what the notification gateway will
// consume once it lands.
type NotifyJob struct {
	logger *slog.Logger
}

// NewNotifyJob constructs the job.
func NewNotifyJob(logger *slog.Logger) *NotifyJob {
	return &NotifyJob{logger: logger}
}

// HandleFinanceReview processes TaskFinanceReview tasks.
func (j *NotifyJob) HandleFinanceReview(ctx context.Context, t *asynq.Task) error {
	var payload OrderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	j.logger.Info("payment awaiting finance review", slog.String("order", payload.OrderNumber))
	return nil
}

// HandleDispatchNotify processes TaskDispatchNotify tasks.
func (j *NotifyJob) HandleDispatchNotify(ctx context.Context, t *asynq.Task) error {
	var payload OrderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	j.logger.Info("order handed to dispatch", slog.String("order", payload.OrderNumber))
	return nil
}

// IdempotencyCleaner is the slice of the idempotency store the sweep needs.
type IdempotencyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// CleanupJob sweeps idempotency keys past their retention.
type CleanupJob struct {
	store     IdempotencyCleaner
	retention time.Duration
	logger    *slog.Logger
}

// NewCleanupJob constructs the sweep job.
func NewCleanupJob(store IdempotencyCleaner, retention time.Duration, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{store: store, retention: retention, logger: logger}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *CleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if err := j.store.Cleanup(ctx, j.retention); err != nil {
		j.logger.Error("idempotency cleanup", slog.Any("error", err))
		return err
	}
	j.logger.Info("idempotency keys swept", slog.Duration("retention", j.retention))
	return nil
}
