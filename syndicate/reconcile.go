package syndicate

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/profile"
	"github.com/c360/syndicate/remote"
)

// Outcome describes how a reconciliation attempt ended.
type Outcome string

const (
	// OutcomeCreated means a new remote record was created.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means the mapped remote record was updated.
	OutcomeUpdated Outcome = "updated"
	// OutcomeReattached means a conflicting remote record owned by the
	// profile author was adopted and updated.
	OutcomeReattached Outcome = "reattached"
	// OutcomeConflict means a name collision could not be resolved safely;
	// the remote record was left untouched and no mapping was written.
	OutcomeConflict Outcome = "conflict"
	// OutcomeDeleted means the mapped remote record was deleted.
	OutcomeDeleted Outcome = "deleted"
	// OutcomeNoop means nothing needed doing.
	OutcomeNoop Outcome = "noop"
	// OutcomeFailed means the attempt errored and is eligible for queue
	// redelivery.
	OutcomeFailed Outcome = "failed"
)

// Reconciler orchestrates the create-vs-update decision, collision handling,
// and organization replication for a single (dataset, profile) sync attempt.
// It always loads live local state and verifies remote state before acting,
// so duplicate or out-of-order deliveries converge on the same result.
type Reconciler struct {
	catalog   catalog.Catalog
	remotes   remote.Factory
	transform *Transformer
	recorder  *Recorder
	notifier  *Notifier
	logger    *slog.Logger
}

// NewReconciler wires a reconciliation engine. A remote client is constructed
// per call via the factory; nothing is cached across profiles.
func NewReconciler(
	store catalog.Catalog,
	remotes remote.Factory,
	transform *Transformer,
	recorder *Recorder,
	notifier *Notifier,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		catalog:   store,
		remotes:   remotes,
		transform: transform,
		recorder:  recorder,
		notifier:  notifier,
		logger:    logger,
	}
}

// Reconcile executes one sync attempt for the dataset against the profile.
//
// The dataset is loaded fresh: state captured at enqueue time may be stale by
// the time a worker runs. A recorded remote id whose record no longer exists
// remotely is treated as a stale mapping and recreated, never surfaced as an
// error.
func (r *Reconciler) Reconcile(ctx context.Context, packageID string, topic Topic, p profile.Profile) (Outcome, error) {
	logger := r.logger.With("dataset", packageID, "topic", string(topic), "profile", p.ID)

	if !topic.Valid() {
		logger.Debug("unrecognized topic, nothing to do")
		return OutcomeNoop, nil
	}

	ds, err := r.catalog.PackageShow(ctx, packageID)
	if err != nil {
		if stderrors.Is(err, errors.ErrDatasetNotFound) {
			// The dataset vanished between enqueue and execution. Retrying
			// cannot help.
			logger.Warn("local dataset disappeared before sync")
			return OutcomeNoop, nil
		}
		return OutcomeFailed, errors.Wrap(err, "Reconciler", "Reconcile", "load local dataset")
	}

	api, err := r.remotes(p)
	if err != nil {
		return OutcomeFailed, errors.WrapFatal(err, "Reconciler", "Reconcile", "build remote client")
	}

	ev := Event{PackageID: packageID, Topic: topic, Profile: p}
	r.notifier.Before(ctx, ev)

	var outcome Outcome
	switch topic {
	case TopicCreate:
		outcome, err = r.syncCreate(ctx, ds, p, api, logger)
	case TopicUpdate:
		outcome, err = r.syncUpdate(ctx, ds, p, api, logger)
	case TopicDelete:
		outcome, err = r.syncDelete(ctx, ds, p, api, logger)
	}
	if err != nil {
		return OutcomeFailed, err
	}

	r.notifier.After(ctx, ev)
	return outcome, nil
}

// syncCreate builds the outbound payload and creates the remote record. A
// name collision hands over to reattachment instead of failing outright.
func (r *Reconciler) syncCreate(
	ctx context.Context,
	ds *catalog.Dataset,
	p profile.Profile,
	api remote.API,
	logger *slog.Logger,
) (Outcome, error) {
	name := RemoteName(p.NamePrefix, ds.Name)

	payload, err := r.transform.Prepare(ctx, ds, p, name, api)
	if err != nil {
		return OutcomeFailed, err
	}

	created, err := api.PackageCreate(ctx, payload)
	if err == nil {
		logger.Info("created remote dataset", "remote_id", created.ID, "remote_name", created.Name)
		if err := r.recorder.Record(ctx, ds.ID, created.ID, p.FieldID); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeCreated, nil
	}

	if remote.IsNameConflict(err) {
		logger.Info("remote name already in use, checking creator", "remote_name", payload.Name)
		return r.reattach(ctx, ds, payload, p, api, logger)
	}

	return OutcomeFailed, errors.Wrap(err, "Reconciler", "syncCreate", "create remote dataset")
}

// syncUpdate verifies the recorded mapping and updates the remote record. A
// missing or stale mapping falls back to the create path; a name collision
// hands over to reattachment.
func (r *Reconciler) syncUpdate(
	ctx context.Context,
	ds *catalog.Dataset,
	p profile.Profile,
	api remote.API,
	logger *slog.Logger,
) (Outcome, error) {
	remoteID, ok := ds.Extra(p.FieldID)
	if !ok || remoteID == "" {
		logger.Debug("no sync mapping recorded, creating")
		return r.syncCreate(ctx, ds, p, api, logger)
	}

	shown, err := api.PackageShow(ctx, remoteID)
	if err != nil {
		if stderrors.Is(err, errors.ErrRemoteNotFound) {
			// The remote side was deleted out-of-band. Normal condition:
			// silently re-create and overwrite the mapping.
			logger.Info("stale sync mapping, recreating remote dataset", "remote_id", remoteID)
			return r.syncCreate(ctx, ds, p, api, logger)
		}
		return OutcomeFailed, errors.Wrap(err, "Reconciler", "syncUpdate", "verify remote dataset")
	}

	// The verified remote name is authoritative from here on, not the
	// locally computed one: the remote may have been renamed.
	payload, err := r.transform.Prepare(ctx, ds, p, shown.Name, api)
	if err != nil {
		return OutcomeFailed, err
	}

	if _, err := api.PackageUpdate(ctx, shown.ID, payload); err != nil {
		if remote.IsNameConflict(err) {
			logger.Info("remote name collided during update, checking creator", "remote_name", payload.Name)
			return r.reattach(ctx, ds, payload, p, api, logger)
		}
		return OutcomeFailed, errors.Wrap(err, "Reconciler", "syncUpdate", "update remote dataset")
	}

	logger.Info("updated remote dataset", "remote_id", shown.ID)
	return OutcomeUpdated, nil
}

// syncDelete forwards a local deletion to the remote catalog when the profile
// opts in. The local sync mapping is kept either way: removing it is an
// administrative action, not part of the pipeline.
func (r *Reconciler) syncDelete(
	ctx context.Context,
	ds *catalog.Dataset,
	p profile.Profile,
	api remote.API,
	logger *slog.Logger,
) (Outcome, error) {
	if !p.PropagateDeletions {
		logger.Debug("deletion propagation disabled for profile")
		return OutcomeNoop, nil
	}

	remoteID, ok := ds.Extra(p.FieldID)
	if !ok || remoteID == "" {
		logger.Debug("no sync mapping recorded, nothing to delete remotely")
		return OutcomeNoop, nil
	}

	if err := api.PackageDelete(ctx, remoteID); err != nil {
		if stderrors.Is(err, errors.ErrRemoteNotFound) {
			logger.Debug("remote dataset already gone", "remote_id", remoteID)
			return OutcomeNoop, nil
		}
		return OutcomeFailed, errors.Wrap(err, "Reconciler", "syncDelete", "delete remote dataset")
	}

	logger.Info("deleted remote dataset", "remote_id", remoteID)
	return OutcomeDeleted, nil
}

// reattach recovers from a name collision. The conflicting remote record is
// adopted only when its creator matches the profile's configured author;
// anything else leaves both the remote record and the local mapping
// untouched. Precondition failures end the attempt without error so the
// worker does not crash and the next change notification can retry.
func (r *Reconciler) reattach(
	ctx context.Context,
	ds *catalog.Dataset,
	payload *catalog.Dataset,
	p profile.Profile,
	api remote.API,
	logger *slog.Logger,
) (Outcome, error) {
	if p.Author == "" {
		logger.Warn("name collision and no author configured, leaving remote untouched",
			"remote_name", payload.Name)
		return OutcomeConflict, nil
	}

	conflicting, err := api.PackageShow(ctx, payload.Name)
	if err != nil {
		if errors.IsTransient(err) {
			return OutcomeFailed, errors.Wrap(err, "Reconciler", "reattach", "fetch conflicting dataset")
		}
		logger.Warn("conflicting remote dataset unreadable, leaving remote untouched",
			"remote_name", payload.Name, "error", err)
		return OutcomeConflict, nil
	}

	author, err := api.UserShow(ctx, p.Author)
	if err != nil {
		if errors.IsTransient(err) {
			return OutcomeFailed, errors.Wrap(err, "Reconciler", "reattach", "fetch author")
		}
		logger.Warn("author not found on remote, leaving remote untouched",
			"author", p.Author, "error", err)
		return OutcomeConflict, nil
	}

	if conflicting.CreatorUserID != author.ID {
		logger.Warn("conflicting remote dataset belongs to another user, leaving remote untouched",
			"remote_name", payload.Name,
			"creator", conflicting.CreatorUserID,
			"author", author.ID)
		return OutcomeConflict, nil
	}

	if _, err := api.PackageUpdate(ctx, conflicting.ID, payload); err != nil {
		return OutcomeFailed, errors.Wrap(err, "Reconciler", "reattach", "adopt conflicting dataset")
	}
	if err := r.recorder.Record(ctx, ds.ID, conflicting.ID, p.FieldID); err != nil {
		return OutcomeFailed, err
	}

	logger.Info("reattached to existing remote dataset",
		"remote_id", conflicting.ID, "author", fmt.Sprintf("%s (%s)", p.Author, author.ID))
	return OutcomeReattached, nil
}
