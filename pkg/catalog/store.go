package catalog

import (
	"context"

	"github.com/bilhallen/filter-engine/pkg/types"
)

// Listing is one car in the catalog. MakeId/ModelId reference the hierarchy.
type Listing struct {
	Id       uint   `json:"id"`
	Title    string `json:"title"`
	MakeId   uint   `json:"makeId"`
	ModelId  uint   `json:"modelId,omitempty"`
	Price    int    `json:"price"`
	Mileage  int    `json:"mileage"`
	Year     int    `json:"year"`
	FuelType string `json:"fuelType,omitempty"`
	BodyType string `json:"bodyType,omitempty"`
	Sold     bool   `json:"sold,omitempty"`
	Image    string `json:"image,omitempty"`
}

// Store executes a filter predicate and renders the first page of matches.
type Store interface {
	Query(ctx context.Context, p *types.Predicate) (*types.Result, error)
}
