package catalog

import "context"

// Catalog is the contract the syndication core requires from the local
// metadata store. The host application owns the store; the core only reads
// datasets, upserts the single sync-mapping extra, and asks for a search
// reindex after mutating it.
type Catalog interface {
	// PackageShow returns the live dataset record for id, or
	// errors.ErrDatasetNotFound.
	PackageShow(ctx context.Context, id string) (*Dataset, error)

	// UpsertExtra inserts or updates one extra key/value entry on the
	// dataset. The write must be atomic with respect to that single entry.
	UpsertExtra(ctx context.Context, packageID, key, value string) error

	// Reindex triggers a full-text search reindex of the dataset so that
	// syndication-state fields are queryable immediately.
	Reindex(ctx context.Context, packageID string) error
}
