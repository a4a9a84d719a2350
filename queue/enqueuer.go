package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/metric"
	"github.com/c360/syndicate/natsclient"
)

// Enqueuer submits reconciliation tasks. The dispatch trigger depends on
// this interface so notification handling can be tested without a broker.
type Enqueuer interface {
	Enqueue(ctx context.Context, task Task) error
}

// Publisher is the JetStream-backed Enqueuer.
type Publisher struct {
	client  *natsclient.Client
	metrics *metric.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a publisher and ensures the task stream exists.
func NewPublisher(ctx context.Context, client *natsclient.Client, metrics *metric.Metrics, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := client.EnsureWorkQueue(ctx, StreamName, []string{SubjectPattern}); err != nil {
		return nil, errors.Wrap(err, "Publisher", "NewPublisher", "ensure task stream")
	}

	return &Publisher{client: client, metrics: metrics, logger: logger}, nil
}

// Enqueue publishes one task to the work queue and returns immediately.
func (p *Publisher) Enqueue(ctx context.Context, task Task) error {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}

	data, err := task.Encode()
	if err != nil {
		return err
	}

	if err := p.client.PublishToStream(ctx, task.Subject(), data); err != nil {
		return errors.Wrap(err, "Publisher", "Enqueue", "publish task")
	}

	if p.metrics != nil {
		p.metrics.TasksEnqueued.WithLabelValues(task.ProfileID, string(task.Topic)).Inc()
	}
	p.logger.Debug("enqueued reconciliation task",
		"dataset", task.PackageID, "topic", string(task.Topic), "profile", task.ProfileID)
	return nil
}
