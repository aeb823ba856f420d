// Package deps installs the tools gln needs through a chain of package
// managers, falling back from one to the next.
package deps

import (
	"fmt"
	"strings"
)

// Plan is the ordered list of dependencies to install. Requirements always
// come before the dependencies that need them.
type Plan struct {
	Steps []Dependency

	// Requested are the names the caller asked for, in order.
	Requested []string
}

// Resolver builds install plans from a catalog.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a resolver for the given catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve creates a plan for names. Each dependency appears once, after
// everything it requires.
func (r *Resolver) Resolve(names []string) (*Plan, error) {
	plan := &Plan{Requested: append([]string(nil), names...)}

	state := make(map[string]visit)
	for _, name := range names {
		if err := r.buildPlan(name, plan, state, nil); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

type visit int

const (
	unvisited visit = iota
	visiting
	done
)

// buildPlan adds name after recursively adding its requirements.
func (r *Resolver) buildPlan(name string, plan *Plan, state map[string]visit, chain []string) error {
	switch state[name] {
	case done:
		return nil
	case visiting:
		return fmt.Errorf("dependency cycle: %s -> %s", strings.Join(chain, " -> "), name)
	}

	dep, ok := r.catalog[name]
	if !ok {
		return fmt.Errorf("unknown dependency '%s'", name)
	}

	state[name] = visiting
	chain = append(chain, name)
	for _, req := range dep.Requires {
		if err := r.buildPlan(req, plan, state, chain); err != nil {
			return err
		}
	}
	state[name] = done

	plan.Steps = append(plan.Steps, dep)
	return nil
}

// Names returns the dependency names in install order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, d := range p.Steps {
		names[i] = d.Name
	}
	return names
}

// String returns a human-readable representation of the plan.
func (p *Plan) String() string {
	if len(p.Steps) == 0 {
		return "empty plan"
	}

	parts := make([]string, len(p.Steps))
	for i, d := range p.Steps {
		parts[i] = fmt.Sprintf("%d. %s", i+1, d.Name)
	}
	return strings.Join(parts, " -> ")
}
