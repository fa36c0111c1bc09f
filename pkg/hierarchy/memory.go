package hierarchy

import (
	"context"
	"sort"
	"sync"

	"github.com/bilhallen/filter-engine/pkg/types"
)

// MemoryStore is the map-backed hierarchy used standalone and in tests.
// CountFn, when set, supplies listing counts for ChildrenOf.
type MemoryStore struct {
	mu       sync.RWMutex
	bySlug   map[string]*Node
	byId     map[uint]*Node
	children map[uint][]uint
	CountFn  func(categoryId uint) int
}

func NewMemoryStore(nodes ...Node) *MemoryStore {
	s := &MemoryStore{
		bySlug:   map[string]*Node{},
		byId:     map[uint]*Node{},
		children: map[uint][]uint{},
	}
	for _, n := range nodes {
		s.Upsert(n)
	}
	return s
}

func (s *MemoryStore) Upsert(n Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node := n
	if old, ok := s.byId[n.Id]; ok {
		delete(s.bySlug, old.Slug)
		if old.ParentId != 0 {
			s.children[old.ParentId] = removeId(s.children[old.ParentId], old.Id)
		}
	}
	s.bySlug[n.Slug] = &node
	s.byId[n.Id] = &node
	if n.ParentId != 0 {
		s.children[n.ParentId] = append(s.children[n.ParentId], n.Id)
	}
}

func removeId(ids []uint, id uint) []uint {
	ret := ids[:0]
	for _, v := range ids {
		if v != id {
			ret = append(ret, v)
		}
	}
	return ret
}

func (s *MemoryStore) Node(_ context.Context, slug string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.bySlug[slug]
	if !ok {
		return nil, types.ErrNotFound
	}
	ret := *n
	return &ret, nil
}

func (s *MemoryStore) ById(_ context.Context, id uint) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byId[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	ret := *n
	return &ret, nil
}

// ChildrenOf lists the models of a make; id 0 lists the makes themselves.
func (s *MemoryStore) ChildrenOf(_ context.Context, id uint) ([]Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == 0 {
		roots := make([]Child, 0)
		for _, n := range s.byId {
			if n.IsRoot() {
				c := Child{Id: n.Id, Slug: n.Slug, Name: n.Name}
				if s.CountFn != nil {
					c.Count = s.CountFn(n.Id)
				}
				roots = append(roots, c)
			}
		}
		sort.Slice(roots, func(a, b int) bool { return roots[a].Name < roots[b].Name })
		return roots, nil
	}
	ids, ok := s.children[id]
	if !ok {
		if _, exists := s.byId[id]; !exists {
			return nil, types.ErrNotFound
		}
		return []Child{}, nil
	}
	ret := make([]Child, 0, len(ids))
	for _, childId := range ids {
		n := s.byId[childId]
		c := Child{Id: n.Id, Slug: n.Slug, Name: n.Name}
		if s.CountFn != nil {
			c.Count = s.CountFn(n.Id)
		}
		ret = append(ret, c)
	}
	return ret, nil
}
