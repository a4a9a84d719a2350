package syndicate

import (
	"context"
	"log/slog"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/profile"
	"github.com/c360/syndicate/remote"
)

// Transformer converts a local dataset into the outbound payload for one
// profile. Aside from organization replication, which is isolated in
// ReplicateOrganization, preparation is pure data transformation.
type Transformer struct {
	extensions *Registry
	logger     *slog.Logger
}

// NewTransformer creates a transformer running payloads through the given
// extension chain.
func NewTransformer(exts *Registry, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{extensions: exts, logger: logger}
}

// Prepare builds the outbound payload for the dataset. remoteName is the
// name the record carries on the remote: the computed prefixed name on the
// create path, the verified remote name on the update path. api is only
// consulted when the profile replicates organizations.
func (t *Transformer) Prepare(
	ctx context.Context,
	ds *catalog.Dataset,
	p profile.Profile,
	remoteName string,
	api remote.API,
) (*catalog.Dataset, error) {
	payload := ds.Clone()
	localID := ds.ID

	// The remote assigns its own id; carrying the local one over would
	// corrupt the create call.
	payload.ID = ""
	payload.Name = remoteName
	payload.CreatorUserID = ""

	payload.Extras = filterExtras(payload.Extras, p.FieldID)
	payload.Resources = filterResources(payload.Resources)

	org := payload.Organization
	payload.Organization = nil

	if p.ReplicateOrganization {
		orgID, err := ReplicateOrganization(ctx, org, p, api, t.logger)
		if err != nil {
			return nil, errors.Wrap(err, "Transformer", "Prepare", "replicate organization")
		}
		payload.OwnerOrg = orgID
	} else {
		payload.OwnerOrg = p.Organization
	}

	payload = t.extensions.Prepare(localID, payload, p)
	return payload, nil
}

// filterExtras drops the profile's own remote-id entry so the remote never
// inherits a stale self-referential mapping.
func filterExtras(extras []catalog.Extra, fieldID string) []catalog.Extra {
	out := make([]catalog.Extra, 0, len(extras))
	for _, e := range extras {
		if e.Key == fieldID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// filterResources reduces each resource to its url and name. Internal
// resource metadata stays local.
func filterResources(resources []catalog.Resource) []catalog.Resource {
	out := make([]catalog.Resource, 0, len(resources))
	for _, r := range resources {
		out = append(out, catalog.Resource{URL: r.URL, Name: r.Name})
	}
	return out
}
