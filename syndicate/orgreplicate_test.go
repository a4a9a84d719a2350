package syndicate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/errors"
)

func TestReplicateOrganization_ReusesExisting(t *testing.T) {
	f := newFakeRemote()
	f.orgs["org-1"] = &catalog.Organization{ID: "org-1", Name: "council"}

	id, err := ReplicateOrganization(context.Background(), &catalog.Organization{Name: "council"}, testProfile(), f, nil)
	require.NoError(t, err)
	assert.Equal(t, "org-1", id)
	assert.Len(t, f.orgs, 1, "existing organization must not be recreated")
}

func TestReplicateOrganization_CreatesMissing(t *testing.T) {
	f := newFakeRemote()
	org := &catalog.Organization{
		Name:            "council",
		Title:           "Regional Council",
		Description:     "desc",
		ImageDisplayURL: "https://local/logo.png",
	}

	id, err := ReplicateOrganization(context.Background(), org, testProfile(), f, nil)
	require.NoError(t, err)

	created := f.orgs[id]
	require.NotNil(t, created)
	assert.Equal(t, "council", created.Name)
	assert.Equal(t, "Regional Council", created.Title)
	assert.Equal(t, "https://local/logo.png", created.ImageURL)
}

func TestReplicateOrganization_PlaceholderImage(t *testing.T) {
	f := newFakeRemote()

	id, err := ReplicateOrganization(context.Background(), &catalog.Organization{Name: "council"}, testProfile(), f, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://remote.example.org/base/images/placeholder-organization.png", f.orgs[id].ImageURL)
}

func TestReplicateOrganization_NoLocalOrganization(t *testing.T) {
	f := newFakeRemote()

	_, err := ReplicateOrganization(context.Background(), nil, testProfile(), f, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

type orgLookupFailRemote struct {
	*fakeRemote
	lookupErr error
}

func (f *orgLookupFailRemote) OrganizationShow(context.Context, string) (*catalog.Organization, error) {
	return nil, f.lookupErr
}

func TestReplicateOrganization_AuthorizationErrorContinues(t *testing.T) {
	f := &orgLookupFailRemote{fakeRemote: newFakeRemote(), lookupErr: errors.ErrNotAuthorized}

	id, err := ReplicateOrganization(context.Background(), &catalog.Organization{Name: "council"}, testProfile(), f, nil)
	require.NoError(t, err, "hidden organizations must not block replication")
	assert.NotEmpty(t, id)
}

func TestReplicateOrganization_TransportErrorPropagates(t *testing.T) {
	f := &orgLookupFailRemote{
		fakeRemote: newFakeRemote(),
		lookupErr:  errors.WrapTransient(errors.ErrRemoteUnavailable, "Client", "call", "organization_show"),
	}

	_, err := ReplicateOrganization(context.Background(), &catalog.Organization{Name: "council"}, testProfile(), f, nil)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Empty(t, f.orgs, "no organization may be created after a transport failure")
}
