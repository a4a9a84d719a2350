package remote

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/errors"
)

// CatalogAdapter implements the local catalog contract over the catalog's
// own action API. Deployments embedded in the host application implement
// catalog.Catalog directly against its store instead; the standalone daemon
// uses this adapter.
type CatalogAdapter struct {
	api    API
	logger *slog.Logger
}

// NewCatalogAdapter wraps an action-API client as a local catalog.
func NewCatalogAdapter(api API, logger *slog.Logger) *CatalogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogAdapter{api: api, logger: logger}
}

// PackageShow returns the live dataset record.
func (a *CatalogAdapter) PackageShow(ctx context.Context, id string) (*catalog.Dataset, error) {
	ds, err := a.api.PackageShow(ctx, id)
	if err != nil {
		if stderrors.Is(err, errors.ErrRemoteNotFound) {
			return nil, errors.ErrDatasetNotFound
		}
		return nil, err
	}
	return ds, nil
}

// UpsertExtra reads the dataset, replaces or appends the extra, and writes
// the record back. The action API applies the update atomically. When the
// extra already holds the target value no update is issued: the catalog
// notifies this daemon on every package_update, so an unconditional
// write-back would re-trigger the pipeline for its own mapping writes.
func (a *CatalogAdapter) UpsertExtra(ctx context.Context, packageID, key, value string) error {
	ds, err := a.PackageShow(ctx, packageID)
	if err != nil {
		return err
	}

	updated := false
	for i, e := range ds.Extras {
		if e.Key == key {
			if e.Value == value {
				return nil
			}
			ds.Extras[i].Value = value
			updated = true
			break
		}
	}
	if !updated {
		ds.Extras = append(ds.Extras, catalog.Extra{Key: key, Value: value})
	}

	if _, err := a.api.PackageUpdate(ctx, ds.ID, ds); err != nil {
		return errors.Wrap(err, "CatalogAdapter", "UpsertExtra", "write dataset")
	}
	return nil
}

// Reindex is satisfied by the catalog itself: the action API reindexes on
// every package update, so the adapter only records the request.
func (a *CatalogAdapter) Reindex(_ context.Context, packageID string) error {
	a.logger.Debug("reindex delegated to catalog update hook", "dataset", packageID)
	return nil
}
