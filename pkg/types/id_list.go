package types

import (
	"maps"
	"slices"
)

type ItemList map[uint]struct{}

func (i ItemList) Add(id uint) {
	i[id] = struct{}{}
}

func (i ItemList) Remove(id uint) {
	delete(i, id)
}

func (i ItemList) Contains(id uint) bool {
	_, ok := i[id]
	return ok
}

func (i ItemList) Intersect(other ItemList) {
	for id := range i {
		if _, ok := other[id]; !ok {
			delete(i, id)
		}
	}
}

func (i ItemList) Exclude(other ItemList) {
	for id := range other {
		delete(i, id)
	}
}

func (i ItemList) Merge(other ItemList) {
	maps.Copy(i, other)
}

func (i ItemList) Clone() ItemList {
	ret := make(ItemList, len(i))
	maps.Copy(ret, i)
	return ret
}

// SortedIds returns up to maxItems ids in ascending order.
func (i ItemList) SortedIds(maxItems int) []uint {
	ids := slices.Collect(maps.Keys(i))
	slices.Sort(ids)
	if maxItems >= 0 && len(ids) > maxItems {
		ids = ids[:maxItems]
	}
	return ids
}
