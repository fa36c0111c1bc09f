package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bilhallen/filter-engine/pkg/types"
)

// MemoryIndex is an inverted index over the listings. Categorical values and
// category membership are id lists per value, numeric fields are checked per
// candidate; a query is the intersection of the per-facet lists. Listings are
// indexed under both their make and their model so a predicate can narrow to
// either level.
type MemoryIndex struct {
	mu         sync.RWMutex
	listings   map[uint]*Listing
	all        types.ItemList
	byCategory map[uint]types.ItemList
	byValue    map[string]map[string]types.ItemList
	sold       types.ItemList
	renderer   Renderer
	generation atomic.Uint64
}

func NewMemoryIndex(renderer Renderer) *MemoryIndex {
	return &MemoryIndex{
		listings:   map[uint]*Listing{},
		all:        types.ItemList{},
		byCategory: map[uint]types.ItemList{},
		byValue:    map[string]map[string]types.ItemList{},
		sold:       types.ItemList{},
		renderer:   renderer,
	}
}

// Generation increases on every mutation; result caches key on it.
func (i *MemoryIndex) Generation() uint64 {
	return i.generation.Load()
}

func (i *MemoryIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.listings)
}

func (i *MemoryIndex) addCategoryLink(categoryId, id uint) {
	if categoryId == 0 {
		return
	}
	ids, ok := i.byCategory[categoryId]
	if !ok {
		ids = types.ItemList{}
		i.byCategory[categoryId] = ids
	}
	ids.Add(id)
}

func (i *MemoryIndex) addValueLink(token, value string, id uint) {
	if value == "" {
		return
	}
	values, ok := i.byValue[token]
	if !ok {
		values = map[string]types.ItemList{}
		i.byValue[token] = values
	}
	ids, ok := values[value]
	if !ok {
		ids = types.ItemList{}
		values[value] = ids
	}
	ids.Add(id)
}

func (i *MemoryIndex) removeLinks(l *Listing) {
	if ids, ok := i.byCategory[l.MakeId]; ok {
		ids.Remove(l.Id)
	}
	if ids, ok := i.byCategory[l.ModelId]; ok {
		ids.Remove(l.Id)
	}
	for _, values := range i.byValue {
		for _, ids := range values {
			ids.Remove(l.Id)
		}
	}
	i.sold.Remove(l.Id)
}

func (i *MemoryIndex) Upsert(l *Listing) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if current, ok := i.listings[l.Id]; ok {
		i.removeLinks(current)
	}
	i.listings[l.Id] = l
	i.all.Add(l.Id)
	i.addCategoryLink(l.MakeId, l.Id)
	i.addCategoryLink(l.ModelId, l.Id)
	i.addValueLink("fuel_type", l.FuelType, l.Id)
	i.addValueLink("body_type", l.BodyType, l.Id)
	if l.Sold {
		i.sold.Add(l.Id)
	}
	i.generation.Add(1)
}

func (i *MemoryIndex) Delete(id uint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	current, ok := i.listings[id]
	if !ok {
		return
	}
	i.removeLinks(current)
	delete(i.listings, id)
	i.all.Remove(id)
	i.generation.Add(1)
}

// CountForCategory feeds hierarchy child counts.
func (i *MemoryIndex) CountForCategory(categoryId uint) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byCategory[categoryId])
}

func (l *Listing) numberValue(token string) (int, bool) {
	switch token {
	case "price":
		return l.Price, true
	case "mileage":
		return l.Mileage, true
	case "year":
		return l.Year, true
	}
	return 0, false
}

func (i *MemoryIndex) Query(ctx context.Context, p *types.Predicate) (*types.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	matching := i.all.Clone()
	if len(p.CategoryIds) > 0 {
		member := types.ItemList{}
		for _, id := range p.CategoryIds {
			if ids, ok := i.byCategory[id]; ok {
				member.Merge(ids)
			}
		}
		matching.Intersect(member)
	}
	for token, value := range p.Equals {
		values, ok := i.byValue[token]
		if !ok {
			matching = types.ItemList{}
			break
		}
		matching.Intersect(values[value])
	}
	for token, bounds := range p.Ranges {
		for id := range matching {
			v, ok := i.listings[id].numberValue(token)
			if !ok || v < bounds.Min || v > bounds.Max {
				matching.Remove(id)
			}
		}
	}
	if p.ExcludeSold {
		matching.Exclude(i.sold)
	}

	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	total := len(matching)
	items := make([]*Listing, 0, pageSize)
	for _, id := range matching.SortedIds(pageSize) {
		items = append(items, i.listings[id])
	}
	html, err := i.renderer.Render(items)
	if err != nil {
		return nil, err
	}
	return &types.Result{
		Html:       html,
		TotalCount: total,
		PageCount:  (total + pageSize - 1) / pageSize,
	}, nil
}
