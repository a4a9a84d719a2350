// Package catalog defines the dataset metadata shapes shared by the local
// catalog and remote catalog clients, and the contract the syndication core
// requires from the local metadata store.
package catalog

// Extra is a single key/value metadata entry attached to a dataset.
type Extra struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Resource is a file or link attached to a dataset. Only URL and Name are
// replicated to remote catalogs.
type Resource struct {
	ID          string `json:"id,omitempty"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tag is a free-form keyword on a dataset.
type Tag struct {
	Name string `json:"name"`
}

// Organization is the owning organization of a dataset.
type Organization struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	ImageDisplayURL string `json:"image_display_url,omitempty"`
	NumFollowers    int    `json:"num_followers,omitempty"`
	Tags            []Tag  `json:"tags,omitempty"`
	Users           []User `json:"users,omitempty"`
	Groups          []any  `json:"groups,omitempty"`
}

// User is a catalog user account. The reconciliation engine only ever reads
// ID and Name when checking remote record ownership.
type User struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Capacity string `json:"capacity,omitempty"`
}

// Dataset is the metadata record replicated between catalogs. The shape
// follows the CKAN package dict; fields the engine never touches are carried
// through verbatim.
type Dataset struct {
	ID            string        `json:"id,omitempty"`
	Name          string        `json:"name"`
	Title         string        `json:"title,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Private       bool          `json:"private,omitempty"`
	State         string        `json:"state,omitempty"`
	LicenseID     string        `json:"license_id,omitempty"`
	Version       string        `json:"version,omitempty"`
	URL           string        `json:"url,omitempty"`
	Author        string        `json:"author,omitempty"`
	AuthorEmail   string        `json:"author_email,omitempty"`
	Maintainer    string        `json:"maintainer,omitempty"`
	CreatorUserID string        `json:"creator_user_id,omitempty"`
	OwnerOrg      string        `json:"owner_org,omitempty"`
	Organization  *Organization `json:"organization,omitempty"`
	Extras        []Extra       `json:"extras,omitempty"`
	Resources     []Resource    `json:"resources,omitempty"`
	Tags          []Tag         `json:"tags,omitempty"`
}

// Extra returns the value of the named extra and whether it was present.
func (d *Dataset) Extra(key string) (string, bool) {
	for _, e := range d.Extras {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the dataset. The reconciliation engine mutates
// its outbound payload and must never leak those mutations back into the
// caller's record.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	clone := *d

	if d.Organization != nil {
		org := *d.Organization
		org.Tags = append([]Tag(nil), d.Organization.Tags...)
		org.Users = append([]User(nil), d.Organization.Users...)
		org.Groups = append([]any(nil), d.Organization.Groups...)
		clone.Organization = &org
	}
	clone.Extras = append([]Extra(nil), d.Extras...)
	clone.Resources = append([]Resource(nil), d.Resources...)
	clone.Tags = append([]Tag(nil), d.Tags...)

	return &clone
}
