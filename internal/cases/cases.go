// Package cases holds the registry of versioned compatibility cases.
//
// A case has two halves. Prepare runs against the from-version server
// before the upgrade and only creates state. Test runs against the server
// after the upgrade (and again after a rollback) and asserts that state
// and behaviour survived. Cases are registered explicitly, usually from an
// init function in the package that defines them:
//
//	func init() {
//	    cases.Register(cases.Case{
//	        Name:        "partial-update-existing-index",
//	        FromVersion: "2.5",
//	        Prepare:     prepareIndexes,
//	        Test:        testScoreModifiers,
//	    })
//	}
package cases

import (
	"context"
	"fmt"
	"sync"

	"github.com/marqo-ai/compat-runner/internal/marqo"
	"github.com/marqo-ai/compat-runner/internal/version"
)

// Env is what a case step receives.
type Env struct {
	Client      *marqo.Client
	FromVersion string
	ToVersion   string
}

// StepFunc is a prepare or test step.
type StepFunc func(ctx context.Context, env *Env) error

// Case is a versioned compatibility case.
type Case struct {
	// Name identifies the case; unique within a registry.
	Name string

	// FromVersion is the minimum server version the case applies to.
	// Empty means version.Unversioned.
	FromVersion string

	// Version is the server version the case was written for. Empty
	// means FromVersion.
	Version string

	// Description is shown by the cases listing.
	Description string

	Prepare StepFunc
	Test    StepFunc
}

// MinVersion returns FromVersion with the unversioned default applied.
func (c Case) MinVersion() string {
	if c.FromVersion == "" {
		return version.Unversioned
	}
	return c.FromVersion
}

// DeclaredVersion returns Version, defaulting to MinVersion.
func (c Case) DeclaredVersion() string {
	if c.Version == "" {
		return c.MinVersion()
	}
	return c.Version
}

// Registry is an ordered set of cases.
type Registry struct {
	mu    sync.RWMutex
	cases []Case
	names map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register adds a case. Names must be unique and a case needs at least
// one step.
func (r *Registry) Register(c Case) error {
	if c.Name == "" {
		return fmt.Errorf("case name cannot be empty")
	}
	if c.Prepare == nil && c.Test == nil {
		return fmt.Errorf("case %s: at least one of Prepare or Test is required", c.Name)
	}
	for _, v := range []string{c.FromVersion, c.Version} {
		if v == "" {
			continue
		}
		if err := version.Validate(v); err != nil {
			return fmt.Errorf("case %s: %w", c.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[c.Name] {
		return fmt.Errorf("case %s is already registered", c.Name)
	}
	r.names[c.Name] = true
	r.cases = append(r.cases, c)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(c Case) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// All returns every case in registration order.
func (r *Registry) All() []Case {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Case, len(r.cases))
	copy(out, r.cases)
	return out
}

// Len returns the number of registered cases.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cases)
}

// ForPrepare returns the cases with a prepare step whose minimum version
// is at most the filter's from version.
func (r *Registry) ForPrepare(f version.Filter) []Case {
	var out []Case
	for _, c := range r.All() {
		if c.Prepare != nil && f.PrepareEligible(c.MinVersion()) {
			out = append(out, c)
		}
	}
	return out
}

// ForTest returns the cases with a test step that pass the filter.
func (r *Registry) ForTest(f version.Filter) []Case {
	var out []Case
	for _, c := range r.All() {
		if c.Test != nil && f.Eligible(c.MinVersion(), c.DeclaredVersion()) {
			out = append(out, c)
		}
	}
	return out
}

// Default is the registry built-in cases register into.
var Default = NewRegistry()

// Register adds a case to the default registry, panicking on error.
func Register(c Case) {
	Default.MustRegister(c)
}
