package syndicate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/c360/syndicate/profile"
)

// Event carries the identity of a sync attempt to signal listeners.
type Event struct {
	PackageID string
	Topic     Topic
	Profile   profile.Profile
}

// Listener observes syndication events. A listener error is logged and never
// aborts the pipeline.
type Listener func(ctx context.Context, ev Event) error

// Notifier dispatches before/after syndication signals to an explicit,
// ordered list of synchronous listeners. It replaces the publish/subscribe
// signal registry of older iterations with deterministic invocation order and
// documented fire-and-forget semantics.
type Notifier struct {
	mu     sync.RWMutex
	before []Listener
	after  []Listener
	logger *slog.Logger
}

// NewNotifier creates a notifier logging listener failures to logger.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// OnBefore registers a listener fired before each reconciliation attempt.
func (n *Notifier) OnBefore(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.before = append(n.before, l)
}

// OnAfter registers a listener fired after each successful reconciliation.
func (n *Notifier) OnAfter(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.after = append(n.after, l)
}

// Before fires the before-syndication listeners in registration order.
func (n *Notifier) Before(ctx context.Context, ev Event) {
	n.fire(ctx, "before_syndication", n.snapshot(&n.before), ev)
}

// After fires the after-syndication listeners in registration order.
func (n *Notifier) After(ctx context.Context, ev Event) {
	n.fire(ctx, "after_syndication", n.snapshot(&n.after), ev)
}

func (n *Notifier) snapshot(list *[]Listener) []Listener {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]Listener(nil), *list...)
}

func (n *Notifier) fire(ctx context.Context, signal string, listeners []Listener, ev Event) {
	for i, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					n.logger.Error("signal listener panicked",
						"signal", signal,
						"listener", i,
						"panic", r,
						"dataset", ev.PackageID,
						"profile", ev.Profile.ID)
				}
			}()
			if err := l(ctx, ev); err != nil {
				n.logger.Warn("signal listener failed",
					"signal", signal,
					"listener", i,
					"error", err,
					"dataset", ev.PackageID,
					"profile", ev.Profile.ID)
			}
		}()
	}
}
