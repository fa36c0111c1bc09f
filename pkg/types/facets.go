package types

import "strings"

type FacetKind uint8

const (
	FacetHierarchical FacetKind = iota + 1
	FacetRange
	FacetCategorical
)

// Sentinel bounds keep range expressions in the URL grammar fixed-arity. An
// encoded bound equal to its sentinel means "no bound set".
const (
	MinSentinel       = 0
	AmountMaxSentinel = 1000000000
	YearMaxSentinel   = 2100
)

// FacetDescriptor describes one filterable dimension. The vocabulary below is
// the single source of truth; the codec and the dispatcher both consult it and
// adding a facet means adding one entry here.
type FacetDescriptor struct {
	Token       string    `json:"token"`
	Kind        FacetKind `json:"kind"`
	Values      []string  `json:"values,omitempty"`
	MaxSentinel int       `json:"-"`
}

var Vocabulary = []FacetDescriptor{
	{Token: "make", Kind: FacetHierarchical},
	{Token: "price", Kind: FacetRange, MaxSentinel: AmountMaxSentinel},
	{Token: "mileage", Kind: FacetRange, MaxSentinel: AmountMaxSentinel},
	{Token: "year", Kind: FacetRange, MaxSentinel: YearMaxSentinel},
	{Token: "fuel_type", Kind: FacetCategorical, Values: []string{"petrol", "diesel", "hybrid", "electric", "gas"}},
	{Token: "body_type", Kind: FacetCategorical, Values: []string{"sedan", "hatchback", "estate", "suv", "coupe", "convertible", "van", "pickup"}},
}

func Describe(token string) (*FacetDescriptor, error) {
	for i := range Vocabulary {
		if Vocabulary[i].Token == token {
			return &Vocabulary[i], nil
		}
	}
	return nil, ErrUnknownFacet
}

func (d *FacetDescriptor) IsLegalValue(value string) bool {
	for _, v := range d.Values {
		if v == value {
			return true
		}
	}
	return false
}

// FacetKey identifies one settable slot of a FilterState. Range facets expose
// two keys (<token>_min / <token>_max), the hierarchy two levels (make/model),
// categorical facets one key equal to their token.
type FacetKey string

const (
	KeyMake       FacetKey = "make"
	KeyModel      FacetKey = "model"
	KeyPriceMin   FacetKey = "price_min"
	KeyPriceMax   FacetKey = "price_max"
	KeyMileageMin FacetKey = "mileage_min"
	KeyMileageMax FacetKey = "mileage_max"
	KeyYearMin    FacetKey = "year_min"
	KeyYearMax    FacetKey = "year_max"
	KeyFuelType   FacetKey = "fuel_type"
	KeyBodyType   FacetKey = "body_type"
)

func (k FacetKey) IsMin() bool {
	return strings.HasSuffix(string(k), "_min")
}

func (k FacetKey) IsMax() bool {
	return strings.HasSuffix(string(k), "_max")
}

// Token maps the key onto its vocabulary token.
func (k FacetKey) Token() string {
	if k == KeyModel {
		return "make"
	}
	s := string(k)
	s = strings.TrimSuffix(s, "_min")
	s = strings.TrimSuffix(s, "_max")
	return s
}

func DescribeKey(key FacetKey) (*FacetDescriptor, error) {
	d, err := Describe(key.Token())
	if err != nil {
		return nil, err
	}
	if (key.IsMin() || key.IsMax()) && d.Kind != FacetRange {
		return nil, ErrUnknownFacet
	}
	return d, nil
}
