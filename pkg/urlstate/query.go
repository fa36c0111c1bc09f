package urlstate

import (
	"net/url"

	"github.com/gorilla/schema"

	"github.com/bilhallen/filter-engine/pkg/types"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// FlatQuery is the backward-compatible flat query-string form. Make and model
// arrive as already-resolved ids, so no slug disambiguation is involved.
type FlatQuery struct {
	Make        uint   `schema:"make"`
	Model       uint   `schema:"model"`
	PriceMin    *int   `schema:"price_min"`
	PriceMax    *int   `schema:"price_max"`
	MileageMin  *int   `schema:"mileage_min"`
	MileageMax  *int   `schema:"mileage_max"`
	YearMin     *int   `schema:"year_min"`
	YearMax     *int   `schema:"year_max"`
	FuelType    string `schema:"fuel_type"`
	BodyType    string `schema:"body_type"`
	Page        int    `schema:"page"`
	PageSize    int    `schema:"size,default:20"`
	IncludeSold bool   `schema:"sold"`
}

func DecodeQuery(query url.Values) (*FlatQuery, error) {
	q := &FlatQuery{}
	if err := decoder.Decode(q, query); err != nil {
		return nil, err
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	} else if q.PageSize > 100 {
		q.PageSize = 100
	}
	return q, nil
}

// ToState maps the flat form onto the shared internal shape. Illegal
// categorical values are dropped, inverted bounds normalized.
func (q *FlatQuery) ToState(baseUrl string) *types.FilterState {
	s := types.NewFilterState()
	s.BaseUrl = baseUrl
	s.IncludeSold = q.IncludeSold
	if q.Make != 0 {
		s.Category = &types.Ref{Id: q.Make}
	}
	if q.Model != 0 {
		s.SubCategory = &types.Ref{Id: q.Model}
	}
	setBound := func(token string, minValue, maxValue *int) {
		b := &types.RangeBound{Min: minValue, Max: maxValue}
		if b.IsEmpty() {
			return
		}
		b.Normalize()
		s.Ranges[token] = b
	}
	setBound("price", q.PriceMin, q.PriceMax)
	setBound("mileage", q.MileageMin, q.MileageMax)
	setBound("year", q.YearMin, q.YearMax)
	setValue := func(token, value string) {
		if value == "" {
			return
		}
		if d, err := types.Describe(token); err == nil && d.IsLegalValue(value) {
			s.Values[token] = value
		}
	}
	setValue("fuel_type", q.FuelType)
	setValue("body_type", q.BodyType)
	return s
}
