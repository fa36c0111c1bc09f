package hierarchy

import (
	"context"
)

// Node is one entry in the two-level make/model tree. ParentId is 0 for a
// make, the make's id for a model.
type Node struct {
	Id       uint   `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	ParentId uint   `json:"parentId,omitempty"`
}

func (n *Node) IsRoot() bool {
	return n.ParentId == 0
}

type Child struct {
	Id    uint   `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Store is the read contract against the make/model hierarchy. Lookups return
// types.ErrNotFound for missing nodes and types.ErrHierarchyUnavailable when
// the backing store cannot be reached, two conditions callers must keep apart.
type Store interface {
	Node(ctx context.Context, slug string) (*Node, error)
	ById(ctx context.Context, id uint) (*Node, error)
	ChildrenOf(ctx context.Context, id uint) ([]Child, error)
}
