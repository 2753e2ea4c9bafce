package dosing

import (
	"errors"
	"fmt"
	"sort"

	"dripcalc/internal/models"
)

// Policy names
const (
	PolicyYale   = "yale"
	PolicySimple = "simple"
	PolicyHourly = "yale-hourly"
)

var ErrUnknownPolicy = errors.New("unknown dosing policy")

// Policy maps a reading to a rate decision. Implementations are stateless and
// safe for concurrent use.
type Policy interface {
	Name() string
	Decide(r models.Reading) (models.Decision, error)
}

// Registry holds the selectable policies and the default one.
type Registry struct {
	policies map[string]Policy
	def      string
}

// NewRegistry registers policies under their names. def must be one of them.
func NewRegistry(def string, policies ...Policy) (*Registry, error) {
	reg := &Registry{policies: make(map[string]Policy, len(policies)), def: def}
	for _, p := range policies {
		reg.policies[p.Name()] = p
	}
	if _, ok := reg.policies[def]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownPolicy, def)
	}
	return reg, nil
}

// Standard builds the registry with all built-in policies. The simple policy
// uses the given target bounds.
func Standard(def string, targetLow, targetHigh float64) (*Registry, error) {
	simple, err := NewSimple(targetLow, targetHigh)
	if err != nil {
		return nil, err
	}
	return NewRegistry(def, Yale{}, simple, Hourly{})
}

// Lookup returns the named policy. An empty name selects the default.
func (r *Registry) Lookup(name string) (Policy, error) {
	if name == "" {
		name = r.def
	}
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return p, nil
}

// Default returns the name of the default policy.
func (r *Registry) Default() string {
	return r.def
}

// Names returns the registered policy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
