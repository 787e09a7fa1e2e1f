package graph

import (
	"context"
	"fmt"
	"sort"
)

// Action produces a target's artifacts. A non-nil error aborts every
// dependent target.
type Action func(ctx context.Context) error

// Target declares one buildable artifact.
type Target struct {
	// Name identifies the target on the command line and in logs.
	Name string
	// Doc is a one-line description shown by target listings.
	Doc string
	// Action produces the target. Nil actions are valid for grouping
	// targets that only aggregate dependencies.
	Action Action
	// Sources are files or directories whose content decides freshness.
	Sources []string
	// Outputs are artifacts the action produces. A missing output forces a
	// rebuild regardless of source fingerprints.
	Outputs []string
	// Deps names targets that must complete before this one starts.
	Deps []string
	// Always forces the action to run on every invocation.
	Always bool
}

type node struct {
	target     Target
	dependents []string
}

// Graph is an immutable, validated build DAG. Safe for concurrent reads.
type Graph struct {
	nodes map[string]*node
	order []string
}

// New builds and validates a Graph. It rejects empty or duplicate target
// names, dependency references to unknown targets, self-loops, and cycles.
func New(targets []Target) (*Graph, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("graph: no targets")
	}

	nodes := make(map[string]*node, len(targets))
	order := make([]string, 0, len(targets))
	for _, t := range targets {
		if t.Name == "" {
			return nil, fmt.Errorf("graph: target name is required")
		}
		if _, exists := nodes[t.Name]; exists {
			return nil, fmt.Errorf("graph: duplicate target %q", t.Name)
		}
		nodes[t.Name] = &node{target: t}
		order = append(order, t.Name)
	}

	for _, name := range order {
		n := nodes[name]
		seen := make(map[string]struct{}, len(n.target.Deps))
		for _, dep := range n.target.Deps {
			if dep == name {
				return nil, fmt.Errorf("graph: target %q depends on itself", name)
			}
			depNode, ok := nodes[dep]
			if !ok {
				return nil, fmt.Errorf("graph: target %q depends on unknown target %q", name, dep)
			}
			if _, dup := seen[dep]; dup {
				return nil, fmt.Errorf("graph: target %q lists dependency %q twice", name, dep)
			}
			seen[dep] = struct{}{}
			depNode.dependents = append(depNode.dependents, name)
		}
	}

	g := &Graph{nodes: nodes, order: order}
	if err := g.validateAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// Target returns a target definition by name.
func (g *Graph) Target(name string) (Target, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return Target{}, false
	}
	return n.target, true
}

// Names returns every target name in declaration order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Closure returns the requested targets plus every transitive dependency,
// sorted topologically (dependencies first). An empty request selects the
// whole graph.
func (g *Graph) Closure(requested []string) ([]string, error) {
	if len(requested) == 0 {
		requested = g.order
	}

	selected := make(map[string]struct{})
	var visit func(name string) error
	visit = func(name string) error {
		if _, done := selected[name]; done {
			return nil
		}
		n, ok := g.nodes[name]
		if !ok {
			return fmt.Errorf("graph: unknown target %q", name)
		}
		selected[name] = struct{}{}
		for _, dep := range n.target.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range requested {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return g.topoSort(selected), nil
}

// Dependents returns the direct dependents of a target, sorted.
func (g *Graph) Dependents(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}
	deps := append([]string(nil), n.dependents...)
	sort.Strings(deps)
	return deps
}

func (g *Graph) topoSort(selected map[string]struct{}) []string {
	indeg := make(map[string]int, len(selected))
	for name := range selected {
		indeg[name] = 0
	}
	for name := range selected {
		for _, dep := range g.nodes[name].target.Deps {
			if _, ok := selected[dep]; ok {
				indeg[name]++
			}
		}
	}

	ready := make([]string, 0, len(selected))
	for name, deg := range indeg {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	sorted := make([]string, 0, len(selected))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		sorted = append(sorted, name)

		next := make([]string, 0)
		for _, dependent := range g.nodes[name].dependents {
			if _, ok := selected[dependent]; !ok {
				continue
			}
			indeg[dependent]--
			if indeg[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		sort.Strings(next)
		ready = append(ready, next...)
		sort.Strings(ready)
	}
	return sorted
}

func (g *Graph) validateAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.nodes))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("graph: dependency cycle through %q", name)
		}
		state[name] = visiting
		for _, dep := range g.nodes[name].target.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
