package queue

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/c360/syndicate/audit"
	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/metric"
	"github.com/c360/syndicate/natsclient"
	"github.com/c360/syndicate/pkg/retry"
	"github.com/c360/syndicate/profile"
	"github.com/c360/syndicate/syndicate"
)

// consumerName is the durable consumer shared by worker processes.
const consumerName = "syndicate-worker"

// defaultMaxDeliver bounds redelivery of a failing task before the queue
// gives up on it.
const defaultMaxDeliver = 5

// Worker consumes reconciliation tasks and executes the reconciliation
// engine. Failed tasks lean on the queue's redelivery for retry; the worker
// adds no backoff of its own.
type Worker struct {
	client     *natsclient.Client
	profiles   *profile.Store
	reconciler *syndicate.Reconciler
	auditStore *audit.Store
	metrics    *metric.Metrics
	logger     *slog.Logger
	maxDeliver int
	running    bool
}

// NewWorker wires a worker. auditStore and metrics may be nil.
func NewWorker(
	client *natsclient.Client,
	profiles *profile.Store,
	reconciler *syndicate.Reconciler,
	auditStore *audit.Store,
	metrics *metric.Metrics,
	logger *slog.Logger,
) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		client:     client,
		profiles:   profiles,
		reconciler: reconciler,
		auditStore: auditStore,
		metrics:    metrics,
		logger:     logger,
		maxDeliver: defaultMaxDeliver,
	}
}

// SetMaxDeliver overrides the redelivery bound. Must be called before Start.
func (w *Worker) SetMaxDeliver(n int) {
	if n > 0 {
		w.maxDeliver = n
	}
}

// Start ensures the stream exists and begins consuming tasks. It returns
// once the consumer is attached; consumption continues until ctx is
// cancelled or the client is closed.
func (w *Worker) Start(ctx context.Context) error {
	if w.running {
		return errors.ErrAlreadyStarted
	}

	if _, err := w.client.EnsureWorkQueue(ctx, StreamName, []string{SubjectPattern}); err != nil {
		return errors.Wrap(err, "Worker", "Start", "ensure task stream")
	}

	err := retry.Do(ctx, retry.Quick(), func() error {
		return w.client.ConsumeWork(ctx, StreamName, consumerName, w.maxDeliver, w.handle)
	})
	if err != nil {
		return errors.Wrap(err, "Worker", "Start", "attach consumer")
	}

	w.running = true
	w.logger.Info("syndication worker started", "stream", StreamName, "consumer", consumerName)
	return nil
}

// handle executes one delivered task. The returned error drives the queue's
// ack decision: nil acknowledges, transient triggers redelivery, anything
// else terminates the delivery.
func (w *Worker) handle(ctx context.Context, data []byte) error {
	task, err := DecodeTask(data)
	if err != nil {
		// Undecodable payloads can never succeed; surface as non-transient
		// so the queue terminates them.
		w.logger.Error("dropping undecodable task", "error", err)
		return err
	}

	logger := w.logger.With(
		"dataset", task.PackageID, "topic", string(task.Topic), "profile", task.ProfileID)

	p, err := w.profiles.Get(task.ProfileID)
	if err != nil {
		if stderrors.Is(err, errors.ErrProfileNotFound) {
			// The profile was removed after enqueue. Nothing to retry.
			logger.Warn("task references unknown profile, dropping")
			return errors.WrapInvalid(err, "Worker", "handle", "resolve profile")
		}
		return err
	}

	started := time.Now()
	outcome, syncErr := w.reconciler.Reconcile(ctx, task.PackageID, task.Topic, p)

	if w.metrics != nil {
		w.metrics.SyncDuration.WithLabelValues(p.ID, string(task.Topic)).
			Observe(time.Since(started).Seconds())
		w.metrics.TasksProcessed.WithLabelValues(p.ID, string(task.Topic), string(outcome)).Inc()
		if syncErr != nil {
			w.metrics.ErrorsTotal.WithLabelValues("worker", errors.Classify(syncErr).String()).Inc()
		}
	}

	if w.auditStore != nil {
		entry := audit.Entry{
			ProfileID: p.ID,
			PackageID: task.PackageID,
			Topic:     string(task.Topic),
			Outcome:   string(outcome),
		}
		if syncErr != nil {
			entry.Error = syncErr.Error()
		}
		w.auditStore.Record(ctx, entry)
	}

	if syncErr != nil {
		logger.Error("reconciliation failed",
			"outcome", string(outcome),
			"class", errors.Classify(syncErr).String(),
			"error", syncErr)
		return syncErr
	}

	logger.Info("reconciliation finished", "outcome", string(outcome), "took", time.Since(started))
	return nil
}
