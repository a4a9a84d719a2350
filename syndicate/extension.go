package syndicate

import (
	"strings"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/profile"
)

// Extension is the typed extension point collaborators implement to influence
// syndication. Implementations are registered once at startup and invoked in
// registration order.
type Extension interface {
	// SkipSyndication reports whether the dataset must not be syndicated.
	// Any extension returning true vetoes the sync.
	SkipSyndication(ds *catalog.Dataset, flag string) bool

	// PreparePackage receives the outbound payload before it is sent and
	// returns the (possibly mutated) payload. Used to redact fields or
	// normalize types.
	PreparePackage(localID string, ds *catalog.Dataset, p profile.Profile) *catalog.Dataset
}

// BaseExtension is a no-op Extension for embedding.
type BaseExtension struct{}

// SkipSyndication never vetoes.
func (BaseExtension) SkipSyndication(*catalog.Dataset, string) bool { return false }

// PreparePackage returns the payload unchanged.
func (BaseExtension) PreparePackage(_ string, ds *catalog.Dataset, _ profile.Profile) *catalog.Dataset {
	return ds
}

// defaultExtension applies the canonical skip rules: private datasets never
// syndicate, and the profile's flag extra must parse as true.
type defaultExtension struct {
	BaseExtension
}

func (defaultExtension) SkipSyndication(ds *catalog.Dataset, flag string) bool {
	if ds.Private {
		return true
	}
	value, _ := ds.Extra(flag)
	return !ParseBool(value)
}

// ParseBool parses the permissive boolean vocabulary used in dataset extras:
// "true", "yes", "on", "t", "y" and "1" are true, case-insensitively.
// Anything else, including absence, is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "t", "y", "1":
		return true
	default:
		return false
	}
}

// Registry holds the ordered extension chain. The canonical skip rules are
// always first in the chain; registered extensions follow in registration
// order.
type Registry struct {
	extensions []Extension
}

// NewRegistry creates a registry seeded with the canonical skip rules.
func NewRegistry() *Registry {
	return &Registry{extensions: []Extension{defaultExtension{}}}
}

// Register appends an extension to the chain.
func (r *Registry) Register(ext Extension) {
	if ext != nil {
		r.extensions = append(r.extensions, ext)
	}
}

// Skip reports whether any extension vetoes syndication of the dataset.
func (r *Registry) Skip(ds *catalog.Dataset, flag string) bool {
	for _, ext := range r.extensions {
		if ext.SkipSyndication(ds, flag) {
			return true
		}
	}
	return false
}

// Prepare runs the payload through every extension's PreparePackage hook in
// order. An extension returning nil leaves the payload unchanged.
func (r *Registry) Prepare(localID string, ds *catalog.Dataset, p profile.Profile) *catalog.Dataset {
	for _, ext := range r.extensions {
		if next := ext.PreparePackage(localID, ds, p); next != nil {
			ds = next
		}
	}
	return ds
}
