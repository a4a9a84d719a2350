// Package dispatch reacts to dataset change notifications from the host
// application. It maps operations onto topics, applies the per-profile skip
// decision, and enqueues reconciliation work. No remote call ever happens
// here: notification handling runs inside the host's event path and must
// only enqueue.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/metric"
	"github.com/c360/syndicate/profile"
	"github.com/c360/syndicate/queue"
	"github.com/c360/syndicate/syndicate"
)

// Trigger receives change notifications and fans reconciliation work out to
// the configured profiles.
type Trigger struct {
	profiles   *profile.Store
	extensions *syndicate.Registry
	enqueuer   queue.Enqueuer
	metrics    *metric.Metrics
	logger     *slog.Logger
}

// NewTrigger wires a dispatch trigger. metrics may be nil.
func NewTrigger(
	profiles *profile.Store,
	extensions *syndicate.Registry,
	enqueuer queue.Enqueuer,
	metrics *metric.Metrics,
	logger *slog.Logger,
) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{
		profiles:   profiles,
		extensions: extensions,
		enqueuer:   enqueuer,
		metrics:    metrics,
		logger:     logger,
	}
}

// OnChange handles one dataset change notification. Profiles are evaluated
// in declared order and independently: a skip or enqueue failure for one
// profile never affects another. The only side effect is one enqueued task
// per eligible profile.
func (t *Trigger) OnChange(ctx context.Context, ds *catalog.Dataset, operation string) {
	topic := syndicate.TopicForOperation(operation)
	if !topic.Valid() {
		t.logger.Debug("no topic for operation, ignoring notification",
			"operation", operation, "dataset", ds.ID)
		return
	}

	for _, p := range t.profiles.All() {
		if topic == syndicate.TopicDelete && !p.PropagateDeletions {
			t.logger.Debug("deletion propagation disabled, skipping profile",
				"profile", p.ID, "dataset", ds.ID)
			continue
		}

		if syndicate.ShouldSkip(ds, p, t.extensions, t.logger) {
			if t.metrics != nil {
				t.metrics.SkipsTotal.WithLabelValues(p.ID).Inc()
			}
			continue
		}

		task := queue.Task{
			PackageID: ds.ID,
			Topic:     topic,
			ProfileID: p.ID,
		}
		if err := t.enqueuer.Enqueue(ctx, task); err != nil {
			// Profile isolation: log and move on to the next profile.
			t.logger.Error("failed to enqueue reconciliation task",
				"profile", p.ID, "dataset", ds.ID, "error", err)
			continue
		}

		t.logger.Debug("syndication task dispatched",
			"profile", p.ID, "dataset", ds.ID, "topic", string(topic))
	}
}
