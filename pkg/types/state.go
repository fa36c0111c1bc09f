package types

type Mode string

const (
	ModeLive     Mode = "live"
	ModeNavigate Mode = "navigate"
)

// Ref points at a hierarchy node. The slug is stored alongside the id so the
// codec can encode a state without a second hierarchy lookup.
type Ref struct {
	Id   uint   `json:"id"`
	Slug string `json:"slug"`
}

type RangeBound struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

func (b *RangeBound) IsEmpty() bool {
	return b == nil || (b.Min == nil && b.Max == nil)
}

// Normalize restores min <= max by swapping inverted bounds. Bounds are never
// dropped, only reordered.
func (b *RangeBound) Normalize() {
	if b == nil || b.Min == nil || b.Max == nil {
		return
	}
	if *b.Min > *b.Max {
		b.Min, b.Max = b.Max, b.Min
	}
}

// FilterState is the in-memory representation of one filter group. Ranges and
// Values are keyed by vocabulary token. SubCategory is only meaningful when
// Category is set and must be a child of it in the hierarchy.
type FilterState struct {
	Category    *Ref                   `json:"category,omitempty"`
	SubCategory *Ref                   `json:"subCategory,omitempty"`
	Ranges      map[string]*RangeBound `json:"ranges"`
	Values      map[string]string      `json:"values"`
	Mode        Mode                   `json:"mode"`
	Target      string                 `json:"target"`
	BaseUrl     string                 `json:"baseUrl"`
	IncludeSold bool                   `json:"includeSold,omitempty"`
}

func NewFilterState() *FilterState {
	return &FilterState{
		Ranges:  map[string]*RangeBound{},
		Values:  map[string]string{},
		Mode:    ModeLive,
		BaseUrl: "/",
	}
}

func (s *FilterState) HasFacets() bool {
	if s.Category != nil || s.SubCategory != nil {
		return true
	}
	for _, b := range s.Ranges {
		if !b.IsEmpty() {
			return true
		}
	}
	for _, v := range s.Values {
		if v != "" {
			return true
		}
	}
	return false
}

// CategorySlug is the slug emitted in the make: URL segment, the deepest
// selected hierarchy level.
func (s *FilterState) CategorySlug() string {
	if s.SubCategory != nil {
		return s.SubCategory.Slug
	}
	if s.Category != nil {
		return s.Category.Slug
	}
	return ""
}

func (s *FilterState) Clone() *FilterState {
	c := *s
	if s.Category != nil {
		ref := *s.Category
		c.Category = &ref
	}
	if s.SubCategory != nil {
		ref := *s.SubCategory
		c.SubCategory = &ref
	}
	c.Ranges = make(map[string]*RangeBound, len(s.Ranges))
	for token, b := range s.Ranges {
		nb := &RangeBound{}
		if b.Min != nil {
			v := *b.Min
			nb.Min = &v
		}
		if b.Max != nil {
			v := *b.Max
			nb.Max = &v
		}
		c.Ranges[token] = nb
	}
	c.Values = make(map[string]string, len(s.Values))
	for token, v := range s.Values {
		c.Values[token] = v
	}
	return &c
}

// ToPredicate translates the state into the catalog query contract. Missing
// range bounds are widened to the sentinel bounds, the hierarchy selection
// narrows to the deepest chosen level.
func (s *FilterState) ToPredicate(pageSize int) *Predicate {
	p := &Predicate{
		Ranges:      map[string]Range{},
		Equals:      map[string]string{},
		ExcludeSold: !s.IncludeSold,
		PageSize:    pageSize,
	}
	if s.SubCategory != nil {
		p.CategoryIds = []uint{s.SubCategory.Id}
	} else if s.Category != nil {
		p.CategoryIds = []uint{s.Category.Id}
	}
	for token, b := range s.Ranges {
		if b.IsEmpty() {
			continue
		}
		d, err := Describe(token)
		if err != nil {
			continue
		}
		r := Range{Min: MinSentinel, Max: d.MaxSentinel}
		if b.Min != nil {
			r.Min = *b.Min
		}
		if b.Max != nil {
			r.Max = *b.Max
		}
		p.Ranges[token] = r
	}
	for token, v := range s.Values {
		if v != "" {
			p.Equals[token] = v
		}
	}
	return p
}
