// Package profile defines syndication target profiles and the store that
// holds them for the duration of a run. Profiles are built from static
// configuration and are immutable once loaded.
package profile

import (
	"fmt"
	"net/url"
	"strings"
)

// Default metadata keys used when a profile does not override them.
const (
	DefaultFlag    = "syndicate"
	DefaultFieldID = "syndicated_id"
)

// Profile describes one remote syndication target and its policies.
type Profile struct {
	// ID is the stable identifier, unique among configured profiles.
	ID string `json:"id" yaml:"id"`

	// URL is the remote catalog base URL.
	URL string `json:"url" yaml:"url"`

	// APIKey authenticates against the remote catalog.
	APIKey string `json:"api_key" yaml:"api_key"`

	// Organization is a fixed remote organization id used as owner_org when
	// ReplicateOrganization is false. May be empty.
	Organization string `json:"organization" yaml:"organization"`

	// ReplicateOrganization mirrors the local organization onto the remote
	// instead of using the fixed Organization id.
	ReplicateOrganization bool `json:"replicate_organization" yaml:"replicate_organization"`

	// Flag names the local extra that marks a dataset for syndication.
	Flag string `json:"flag" yaml:"flag"`

	// FieldID names the local extra that stores the remote dataset id.
	FieldID string `json:"field_id" yaml:"field_id"`

	// NamePrefix is prepended to the remote dataset name.
	NamePrefix string `json:"name_prefix" yaml:"name_prefix"`

	// Author is the remote username used for collision reattachment. When
	// empty, name collisions are never adopted.
	Author string `json:"author" yaml:"author"`

	// Predicate optionally names a registered predicate that must accept a
	// dataset before it is syndicated to this profile.
	Predicate string `json:"predicate" yaml:"predicate"`

	// PropagateDeletions enables forwarding of local dataset deletions to
	// the remote catalog. Off by default; the mapping extra is never removed
	// automatically either way.
	PropagateDeletions bool `json:"propagate_deletions" yaml:"propagate_deletions"`

	// Extras carries additional free-form profile configuration consumed by
	// extensions.
	Extras map[string]string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// Normalize fills defaulted fields in place.
func (p *Profile) Normalize() {
	if p.Flag == "" {
		p.Flag = DefaultFlag
	}
	if p.FieldID == "" {
		p.FieldID = DefaultFieldID
	}
	p.URL = strings.TrimRight(p.URL, "/")
}

// Validate checks the profile for configuration errors.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.URL == "" {
		return fmt.Errorf("profile %s: url is required", p.ID)
	}
	u, err := url.Parse(p.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("profile %s: url %q is not an absolute URL", p.ID, p.URL)
	}
	if p.APIKey == "" {
		return fmt.Errorf("profile %s: api_key is required", p.ID)
	}
	return nil
}
