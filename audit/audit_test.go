package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "portal.pkg-1", Key("portal", "pkg-1"))
}

func TestKey_SanitizesIDs(t *testing.T) {
	// Dots and other separators collide with the KV key syntax and are
	// mapped onto underscores.
	assert.Equal(t, "portal_eu.pkg_1", Key("portal.eu", "pkg 1"))
	assert.Equal(t, "a_b.c_d", Key("a/b", "c*d"))
}

func TestEntry_Key(t *testing.T) {
	e := Entry{ProfileID: "portal", PackageID: "pkg-1", Outcome: "created"}
	assert.Equal(t, "portal.pkg-1", e.Key())
}
