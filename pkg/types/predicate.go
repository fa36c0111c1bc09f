package types

type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Predicate is the query contract handed to the catalog store. CategoryIds is
// a containment match over listing membership, ranges are inclusive, equals
// are exact matches on categorical fields.
type Predicate struct {
	CategoryIds []uint            `json:"categoryIds,omitempty"`
	Ranges      map[string]Range  `json:"ranges,omitempty"`
	Equals      map[string]string `json:"equals,omitempty"`
	ExcludeSold bool              `json:"excludeSold"`
	PageSize    int               `json:"pageSize"`
}

// Result is what the catalog store renders back for a predicate.
type Result struct {
	Html       string `json:"html"`
	TotalCount int    `json:"totalCount"`
	PageCount  int    `json:"pageCount"`
}
