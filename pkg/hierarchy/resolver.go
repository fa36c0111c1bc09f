package hierarchy

import (
	"context"
	"errors"
	"strings"

	"github.com/bilhallen/filter-engine/pkg/types"
)

// Resolution is the outcome of mapping a combined slug onto the hierarchy.
// SubCategory is nil for a bare make. Unknown marks the best-effort fallback
// where nothing in the hierarchy matched and the whole slug is treated as a
// make; the catalog will return an empty result for it.
type Resolution struct {
	Category    *Node
	SubCategory *Node
	Unknown     bool
}

// Resolve disambiguates a combined slug such as "mercedes-benz-c-class" into
// make or make+model. The slug grammar alone cannot tell the two apart since
// both are plain dash-joined tokens.
//
// Order of attempts:
//  1. exact node lookup; a root node is a bare make, a child node yields its
//     parent as the make
//  2. longest-prefix segmentation: the longest dash prefix that is itself a
//     root node and has the full slug among its children wins
//  3. fallback: the whole slug is assumed to be a make
//
// A store transport failure surfaces as types.ErrHierarchyUnavailable and is
// never folded into the fallback.
func Resolve(ctx context.Context, store Store, slug string) (Resolution, error) {
	node, err := store.Node(ctx, slug)
	if err == nil {
		if node.IsRoot() {
			return Resolution{Category: node}, nil
		}
		parent, err := store.ById(ctx, node.ParentId)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				// Orphan child, treat the node itself as the make.
				return Resolution{Category: node}, nil
			}
			return Resolution{}, err
		}
		return Resolution{Category: parent, SubCategory: node}, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return Resolution{}, err
	}

	tokens := strings.Split(slug, "-")
	for i := len(tokens) - 1; i >= 1; i-- {
		prefix := strings.Join(tokens[:i], "-")
		parent, err := store.Node(ctx, prefix)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return Resolution{}, err
		}
		if !parent.IsRoot() {
			continue
		}
		children, err := store.ChildrenOf(ctx, parent.Id)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return Resolution{}, err
		}
		for _, child := range children {
			if child.Slug == slug {
				return Resolution{
					Category:    parent,
					SubCategory: &Node{Id: child.Id, Slug: child.Slug, Name: child.Name, ParentId: parent.Id},
				}, nil
			}
		}
	}

	return Resolution{Category: &Node{Slug: slug}, Unknown: true}, nil
}
