package syndicate

import (
	"context"
	"log/slog"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/errors"
)

// Recorder persists the local-to-remote identity mapping. It is the sole
// mutation the core performs on local state.
type Recorder struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewRecorder creates a recorder writing through the given local catalog.
func NewRecorder(store catalog.Catalog, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{catalog: store, logger: logger}
}

// Record upserts the sync-mapping extra (fieldID = remoteID) on the local
// dataset and triggers a search reindex so syndication state is queryable
// immediately. Repeated syncs to the same remote record overwrite the single
// entry rather than duplicating it.
func (r *Recorder) Record(ctx context.Context, localID, remoteID, fieldID string) error {
	if err := r.catalog.UpsertExtra(ctx, localID, fieldID, remoteID); err != nil {
		return errors.Wrap(err, "Recorder", "Record", "upsert sync mapping")
	}

	if err := r.catalog.Reindex(ctx, localID); err != nil {
		// The mapping is durable at this point; a failed reindex only delays
		// search visibility until the next write.
		r.logger.Warn("search reindex failed after recording sync mapping",
			"dataset", localID, "error", err)
	}

	r.logger.Debug("recorded sync mapping",
		"dataset", localID, "remote_id", remoteID, "field", fieldID)
	return nil
}
