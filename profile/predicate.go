package profile

import (
	"fmt"
	"sync"

	"github.com/c360/syndicate/catalog"
)

// Predicate decides whether a dataset is eligible for a profile. Predicates
// are registered by name at startup; profiles reference them via the
// Predicate field instead of loading code by dotted-path string.
type Predicate func(ds *catalog.Dataset) bool

var (
	predicateMu  sync.RWMutex
	predicateSet = make(map[string]Predicate)
)

// RegisterPredicate makes a predicate available under the given name.
// Registering a duplicate name panics: predicate wiring is a startup-time
// programming error, not a runtime condition.
func RegisterPredicate(name string, fn Predicate) {
	predicateMu.Lock()
	defer predicateMu.Unlock()

	if name == "" || fn == nil {
		panic("profile: predicate name and function are required")
	}
	if _, exists := predicateSet[name]; exists {
		panic(fmt.Sprintf("profile: predicate %q already registered", name))
	}
	predicateSet[name] = fn
}

// LookupPredicate returns the named predicate, if registered.
func LookupPredicate(name string) (Predicate, bool) {
	predicateMu.RLock()
	defer predicateMu.RUnlock()
	fn, ok := predicateSet[name]
	return fn, ok
}

// ResetPredicates clears the registry. Test helper.
func ResetPredicates() {
	predicateMu.Lock()
	defer predicateMu.Unlock()
	predicateSet = make(map[string]Predicate)
}
