package profile

import (
	"fmt"

	"github.com/c360/syndicate/errors"
)

// Store holds the configured profiles in declaration order. It is populated
// once at startup and read-only afterwards, so no locking is needed.
type Store struct {
	order    []string
	profiles map[string]Profile
}

// NewStore builds a store from the configured profiles. Profiles are
// normalized and validated; duplicate ids are rejected.
func NewStore(profiles []Profile) (*Store, error) {
	s := &Store{
		profiles: make(map[string]Profile, len(profiles)),
	}

	for i := range profiles {
		p := profiles[i]
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, errors.WrapInvalid(err, "Store", "NewStore", "validate profile")
		}
		if _, exists := s.profiles[p.ID]; exists {
			return nil, errors.WrapInvalid(
				fmt.Errorf("duplicate profile id %q", p.ID),
				"Store", "NewStore", "check profile uniqueness")
		}
		s.order = append(s.order, p.ID)
		s.profiles[p.ID] = p
	}

	return s, nil
}

// Get returns the profile with the given id.
func (s *Store) Get(id string) (Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, errors.ErrProfileNotFound
	}
	return p, nil
}

// All returns the profiles in stable declared order.
func (s *Store) All() []Profile {
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id])
	}
	return out
}

// Len returns the number of configured profiles.
func (s *Store) Len() int {
	return len(s.order)
}
