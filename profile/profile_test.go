package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/syndicate/catalog"
)

func validProfile() Profile {
	return Profile{
		ID:     "portal",
		URL:    "https://data.example.org",
		APIKey: "key",
	}
}

func TestProfile_NormalizeDefaults(t *testing.T) {
	p := validProfile()
	p.URL = "https://data.example.org/"
	p.Normalize()

	assert.Equal(t, DefaultFlag, p.Flag)
	assert.Equal(t, DefaultFieldID, p.FieldID)
	assert.Equal(t, "https://data.example.org", p.URL)
}

func TestProfile_NormalizeKeepsOverrides(t *testing.T) {
	p := validProfile()
	p.Flag = "publish_me"
	p.FieldID = "mirror_id"
	p.Normalize()

	assert.Equal(t, "publish_me", p.Flag)
	assert.Equal(t, "mirror_id", p.FieldID)
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Profile)
		ok     bool
	}{
		{"valid", func(*Profile) {}, true},
		{"missing id", func(p *Profile) { p.ID = "" }, false},
		{"missing url", func(p *Profile) { p.URL = "" }, false},
		{"relative url", func(p *Profile) { p.URL = "/data" }, false},
		{"missing api key", func(p *Profile) { p.APIKey = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.modify(&p)
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStore_KeepsDeclaredOrder(t *testing.T) {
	a, b, c := validProfile(), validProfile(), validProfile()
	a.ID, b.ID, c.ID = "c-portal", "a-portal", "b-portal"

	s, err := NewStore([]Profile{a, b, c})
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	var ids []string
	for _, p := range s.All() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"c-portal", "a-portal", "b-portal"}, ids)
}

func TestStore_NormalizesProfiles(t *testing.T) {
	p := validProfile()
	s, err := NewStore([]Profile{p})
	require.NoError(t, err)

	got, err := s.Get("portal")
	require.NoError(t, err)
	assert.Equal(t, DefaultFlag, got.Flag)
	assert.Equal(t, DefaultFieldID, got.FieldID)
}

func TestStore_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewStore([]Profile{validProfile(), validProfile()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate profile id")
}

func TestStore_RejectsInvalidProfile(t *testing.T) {
	p := validProfile()
	p.APIKey = ""
	_, err := NewStore([]Profile{p})
	assert.Error(t, err)
}

func TestStore_GetUnknown(t *testing.T) {
	s, err := NewStore(nil)
	require.NoError(t, err)
	_, err = s.Get("missing")
	assert.Error(t, err)
}

func TestPredicateRegistry(t *testing.T) {
	ResetPredicates()
	t.Cleanup(ResetPredicates)

	RegisterPredicate("always", func(*catalog.Dataset) bool { return true })

	fn, ok := LookupPredicate("always")
	require.True(t, ok)
	assert.True(t, fn(nil))

	_, ok = LookupPredicate("missing")
	assert.False(t, ok)

	assert.Panics(t, func() {
		RegisterPredicate("always", func(*catalog.Dataset) bool { return false })
	})
	assert.Panics(t, func() { RegisterPredicate("", nil) })
}
