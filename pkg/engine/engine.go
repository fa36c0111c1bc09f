// Package engine holds the per-group filter state and its change
// notifications. One Engine instance is created per page/request scope and
// passed by reference; there are no package-level registries.
package engine

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bilhallen/filter-engine/pkg/types"
)

// Listener receives every accepted mutation on a group, synchronously and in
// subscription order.
type Listener func(key types.FacetKey, value string, state *types.FilterState)

// GroupDefaults are merged over the hard-coded defaults (mode live,
// baseUrl "/") when a group is first initialized.
type GroupDefaults struct {
	Mode        types.Mode
	Target      string
	BaseUrl     string
	IncludeSold bool
}

type listenerEntry struct {
	id uint64
	fn Listener
}

type group struct {
	state     *types.FilterState
	listeners []listenerEntry
}

// Engine is the single writer of all FilterState values. Groups are created
// lazily on first touch and live for the engine's lifetime; they are fully
// independent of each other.
type Engine struct {
	mu         sync.Mutex
	nextListen uint64
	groups     map[string]*group
}

func New() *Engine {
	return &Engine{groups: map[string]*group{}}
}

func (e *Engine) ensure(groupId string) *group {
	g, ok := e.groups[groupId]
	if !ok {
		g = &group{state: types.NewFilterState()}
		e.groups[groupId] = g
	}
	return g
}

// InitGroup is idempotent: an already-initialized group is returned untouched.
func (e *Engine) InitGroup(groupId string, defaults GroupDefaults) *types.FilterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if g, ok := e.groups[groupId]; ok {
		return g.state
	}
	g := e.ensure(groupId)
	if defaults.Mode != "" {
		g.state.Mode = defaults.Mode
	}
	if defaults.BaseUrl != "" {
		g.state.BaseUrl = defaults.BaseUrl
	}
	g.state.Target = defaults.Target
	g.state.IncludeSold = defaults.IncludeSold
	return g.state
}

func (e *Engine) Get(groupId string) *types.FilterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensure(groupId).state
}

// Snapshot returns an independent copy of the group's state.
func (e *Engine) Snapshot(groupId string) *types.FilterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensure(groupId).state.Clone()
}

// Set mutates a single facet slot. An empty value clears the slot. For the
// hierarchical keys the optional slug is stored next to the id so encoding
// needs no extra hierarchy lookup. Setting the make does not clear the model;
// dependent resets are the binding's job. Invalid values reject the mutation
// with types.ErrInvalidFacetValue and nothing is notified.
func (e *Engine) Set(groupId string, key types.FacetKey, value string, slug ...string) error {
	d, err := types.DescribeKey(key)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	e.mu.Lock()
	g := e.ensure(groupId)
	s := g.state

	switch d.Kind {
	case types.FacetHierarchical:
		err = setHierarchical(s, key, value, slug)
	case types.FacetRange:
		err = setRangeBound(s, d.Token, key, value)
	case types.FacetCategorical:
		err = setCategorical(s, d, value)
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}
	listeners := make([]listenerEntry, len(g.listeners))
	copy(listeners, g.listeners)
	e.mu.Unlock()

	// Outside the lock so a listener can apply dependent mutations.
	for _, l := range listeners {
		l.fn(key, value, s)
	}
	return nil
}

func setHierarchical(s *types.FilterState, key types.FacetKey, value string, slug []string) error {
	if value == "" {
		if key == types.KeyModel {
			s.SubCategory = nil
		} else {
			s.Category = nil
		}
		return nil
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("set %s=%q: %w", key, value, types.ErrInvalidFacetValue)
	}
	ref := &types.Ref{Id: uint(id)}
	if len(slug) > 0 {
		ref.Slug = slug[0]
	}
	if key == types.KeyModel {
		s.SubCategory = ref
	} else {
		s.Category = ref
	}
	return nil
}

func setRangeBound(s *types.FilterState, token string, key types.FacetKey, value string) error {
	b, ok := s.Ranges[token]
	if !ok {
		b = &types.RangeBound{}
	}
	if value == "" {
		if key.IsMin() {
			b.Min = nil
		} else {
			b.Max = nil
		}
	} else {
		bound, err := strconv.Atoi(value)
		if err != nil || bound < 0 {
			return fmt.Errorf("set %s=%q: %w", key, value, types.ErrInvalidFacetValue)
		}
		if key.IsMin() {
			b.Min = &bound
		} else {
			b.Max = &bound
		}
	}
	b.Normalize()
	if b.IsEmpty() {
		delete(s.Ranges, token)
	} else {
		s.Ranges[token] = b
	}
	return nil
}

func setCategorical(s *types.FilterState, d *types.FacetDescriptor, value string) error {
	if value == "" {
		delete(s.Values, d.Token)
		return nil
	}
	if !d.IsLegalValue(value) {
		return fmt.Errorf("set %s=%q: %w", d.Token, value, types.ErrInvalidFacetValue)
	}
	s.Values[d.Token] = value
	return nil
}

// Subscribe registers a listener on a group and returns its removal handle.
func (e *Engine) Subscribe(groupId string, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.ensure(groupId)
	e.nextListen++
	id := e.nextListen
	g.listeners = append(g.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range g.listeners {
			if l.id == id {
				g.listeners = append(g.listeners[:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}
