package syndicate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/profile"
)

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "True", "TRUE", "yes", "on", "t", "y", "1", " true "} {
		assert.True(t, ParseBool(v), "value %q", v)
	}
	for _, v := range []string{"", "false", "no", "off", "0", "maybe", "2"} {
		assert.False(t, ParseBool(v), "value %q", v)
	}
}

func flagged(value string) *catalog.Dataset {
	return &catalog.Dataset{
		ID:     "pkg-1",
		Name:   "ds",
		Extras: []catalog.Extra{{Key: "syndicate", Value: value}},
	}
}

func TestDefaultExtension_SkipRules(t *testing.T) {
	reg := NewRegistry()

	assert.False(t, reg.Skip(flagged("true"), "syndicate"))
	assert.True(t, reg.Skip(flagged("false"), "syndicate"), "unflagged datasets are skipped")
	assert.True(t, reg.Skip(&catalog.Dataset{ID: "pkg-2", Name: "ds"}, "syndicate"), "missing flag extra means skip")

	private := flagged("true")
	private.Private = true
	assert.True(t, reg.Skip(private, "syndicate"), "private datasets never syndicate")
}

func TestDefaultExtension_CustomFlagName(t *testing.T) {
	reg := NewRegistry()
	ds := &catalog.Dataset{
		ID:     "pkg-1",
		Name:   "ds",
		Extras: []catalog.Extra{{Key: "publish_me", Value: "yes"}},
	}

	assert.False(t, reg.Skip(ds, "publish_me"))
	assert.True(t, reg.Skip(ds, "syndicate"))
}

type vetoExtension struct {
	BaseExtension
	veto bool
}

func (e vetoExtension) SkipSyndication(*catalog.Dataset, string) bool { return e.veto }

func TestRegistry_AnyExtensionVetoes(t *testing.T) {
	reg := NewRegistry()
	reg.Register(vetoExtension{veto: false})
	reg.Register(vetoExtension{veto: true})

	assert.True(t, reg.Skip(flagged("true"), "syndicate"))
}

type appendExtension struct {
	BaseExtension
	tag string
}

func (e appendExtension) PreparePackage(_ string, ds *catalog.Dataset, _ profile.Profile) *catalog.Dataset {
	ds.Title += e.tag
	return ds
}

func TestRegistry_PrepareRunsInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(appendExtension{tag: "-a"})
	reg.Register(appendExtension{tag: "-b"})

	out := reg.Prepare("pkg-1", &catalog.Dataset{Name: "ds", Title: "t"}, profile.Profile{})
	assert.Equal(t, "t-a-b", out.Title)
}

type nilExtension struct{ BaseExtension }

func (nilExtension) PreparePackage(string, *catalog.Dataset, profile.Profile) *catalog.Dataset {
	return nil
}

func TestRegistry_NilPrepareKeepsPayload(t *testing.T) {
	reg := NewRegistry()
	reg.Register(nilExtension{})

	in := &catalog.Dataset{Name: "ds", Title: "t"}
	out := reg.Prepare("pkg-1", in, profile.Profile{})
	assert.Same(t, in, out)
}
