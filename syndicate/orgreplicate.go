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

// placeholderImagePath is the remote catalog's stock organization image, used
// when the local organization has none to offer.
const placeholderImagePath = "/base/images/placeholder-organization.png"

// ReplicateOrganization ensures an organization with the local organization's
// name exists on the remote catalog and returns its id. An existing remote
// organization is reused as-is.
//
// Authorization and validation errors while probing for the existing
// organization are logged and treated as "proceed to create": the remote may
// hide organizations from this API key without the name being free. This is
// deliberately conservative and never fabricates an id. Transport errors
// propagate and fail the sync attempt.
func ReplicateOrganization(
	ctx context.Context,
	org *catalog.Organization,
	p profile.Profile,
	api remote.API,
	logger *slog.Logger,
) (string, error) {
	if org == nil || org.Name == "" {
		return "", errors.WrapInvalid(
			fmt.Errorf("dataset has no organization to replicate"),
			"ReplicateOrganization", "replicate", "resolve local organization")
	}
	if logger == nil {
		logger = slog.Default()
	}

	existing, err := api.OrganizationShow(ctx, org.Name)
	switch {
	case err == nil:
		return existing.ID, nil
	case stderrors.Is(err, errors.ErrRemoteNotFound):
		logger.Info("remote organization not found, creating",
			"organization", org.Name, "profile", p.ID)
	case stderrors.Is(err, errors.ErrNotAuthorized) || errors.IsInvalid(err):
		logger.Error("organization lookup failed, trying to continue",
			"organization", org.Name, "profile", p.ID, "error", err)
	default:
		return "", err
	}

	draft := &catalog.Organization{
		Name:        org.Name,
		Title:       org.Title,
		Description: org.Description,
		ImageURL:    org.ImageDisplayURL,
	}
	if draft.ImageURL == "" {
		draft.ImageURL = p.URL + placeholderImagePath
	}

	created, err := api.OrganizationCreate(ctx, draft)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}
