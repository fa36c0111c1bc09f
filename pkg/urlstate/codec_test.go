package urlstate

import (
	"testing"

	"github.com/bilhallen/filter-engine/pkg/types"
)

func intp(v int) *int {
	return &v
}

func baseState() *types.FilterState {
	s := types.NewFilterState()
	s.BaseUrl = "/cars"
	return s
}

func TestEncodeEmptyState(t *testing.T) {
	if got := Encode(baseState()); got != "/cars/" {
		t.Errorf("Expected /cars/, got %s", got)
	}
}

func TestEncodeCategoryOnly(t *testing.T) {
	s := baseState()
	s.Category = &types.Ref{Id: 1, Slug: "bmw"}
	if got := Encode(s); got != "/cars/filter/make:bmw/" {
		t.Errorf("Expected /cars/filter/make:bmw/, got %s", got)
	}
}

func TestEncodeCategoryAndPriceRange(t *testing.T) {
	s := baseState()
	s.Category = &types.Ref{Id: 1, Slug: "bmw"}
	s.Ranges["price"] = &types.RangeBound{Min: intp(10000), Max: intp(50000)}
	expected := "/cars/filter/make:bmw/meta/price!range:10000_50000/"
	if got := Encode(s); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestEncodeUsesSubCategorySlug(t *testing.T) {
	s := baseState()
	s.Category = &types.Ref{Id: 1, Slug: "bmw"}
	s.SubCategory = &types.Ref{Id: 2, Slug: "bmw-2-series"}
	if got := Encode(s); got != "/cars/filter/make:bmw-2-series/" {
		t.Errorf("Expected /cars/filter/make:bmw-2-series/, got %s", got)
	}
}

func TestEncodeSentinelSubstitution(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *types.FilterState)
		expected string
	}{
		{
			name:     "min only",
			mutate:   func(s *types.FilterState) { s.Ranges["price"] = &types.RangeBound{Min: intp(5000)} },
			expected: "/cars/filter/meta/price!range:5000_1000000000/",
		},
		{
			name:     "max only",
			mutate:   func(s *types.FilterState) { s.Ranges["price"] = &types.RangeBound{Max: intp(20000)} },
			expected: "/cars/filter/meta/price!range:0_20000/",
		},
		{
			name:     "year max sentinel is calendar bound",
			mutate:   func(s *types.FilterState) { s.Ranges["year"] = &types.RangeBound{Min: intp(2015)} },
			expected: "/cars/filter/meta/year!range:2015_2100/",
		},
	}
	for _, test := range tests {
		s := baseState()
		test.mutate(s)
		if got := Encode(s); got != test.expected {
			t.Errorf("%s: expected %s, got %s", test.name, test.expected, got)
		}
	}
}

func TestEncodeMetaExpressionOrder(t *testing.T) {
	s := baseState()
	s.Values["body_type"] = "suv"
	s.Values["fuel_type"] = "diesel"
	s.Ranges["mileage"] = &types.RangeBound{Max: intp(100000)}
	s.Ranges["price"] = &types.RangeBound{Min: intp(10000)}
	// Vocabulary order, not insertion order.
	expected := "/cars/filter/meta/price!range:10000_1000000000;mileage!range:0_100000;fuel_type:diesel;body_type:suv/"
	if got := Encode(s); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestDecodeFullPath(t *testing.T) {
	d := Decode("/cars/filter/make:bmw/meta/price!range:10000_50000;fuel_type:diesel/")
	if d.MakeSlug != "bmw" {
		t.Errorf("Expected make slug bmw, got %s", d.MakeSlug)
	}
	price, ok := d.Ranges["price"]
	if !ok || price.Min == nil || price.Max == nil {
		t.Fatalf("Expected full price range, got %+v", price)
	}
	if *price.Min != 10000 || *price.Max != 50000 {
		t.Errorf("Expected 10000-50000, got %d-%d", *price.Min, *price.Max)
	}
	if d.Values["fuel_type"] != "diesel" {
		t.Errorf("Expected fuel_type diesel, got %s", d.Values["fuel_type"])
	}
}

func TestDecodeStripsSentinelBounds(t *testing.T) {
	d := Decode("/cars/filter/meta/price!range:5000_1000000000;year!range:0_2100/")
	price, ok := d.Ranges["price"]
	if !ok || price.Min == nil || *price.Min != 5000 {
		t.Fatalf("Expected price min 5000, got %+v", price)
	}
	if price.Max != nil {
		t.Errorf("Sentinel max should be stripped, got %d", *price.Max)
	}
	if _, ok := d.Ranges["year"]; ok {
		t.Error("All-sentinel year range should be absent")
	}
}

func TestDecodeSkipsInvalidExpressions(t *testing.T) {
	d := Decode("/cars/filter/meta/bogus:value;price!range:abc_def;fuel_type:plutonium;body_type:suv/")
	if len(d.Ranges) != 0 {
		t.Errorf("Expected no ranges, got %v", d.Ranges)
	}
	if len(d.Values) != 1 || d.Values["body_type"] != "suv" {
		t.Errorf("Expected only body_type=suv, got %v", d.Values)
	}
}

func TestDecodeNoFilterSegment(t *testing.T) {
	d := Decode("/cars/")
	if d.HasFacets() {
		t.Errorf("Expected no facets, got %+v", d)
	}
}

func TestRoundTripIsIdempotent(t *testing.T) {
	paths := []string{
		"/cars/filter/make:bmw/meta/price!range:10000_50000/",
		"/cars/filter/make:mercedes-benz-c-class/",
		"/cars/filter/meta/mileage!range:0_150000;fuel_type:electric/",
		"/cars/filter/make:audi/meta/year!range:2018_2100;body_type:estate/",
		"/cars/",
	}
	for _, path := range paths {
		d := Decode(path)
		s := baseState()
		if d.MakeSlug != "" {
			s.Category = &types.Ref{Slug: d.MakeSlug}
		}
		s.Ranges = d.Ranges
		s.Values = d.Values
		if got := Encode(s); got != path {
			t.Errorf("Round trip changed %s into %s", path, got)
		}
	}
}

func TestEncodeDecodeEncodeStable(t *testing.T) {
	s := baseState()
	s.Category = &types.Ref{Id: 1, Slug: "bmw"}
	s.Ranges["price"] = &types.RangeBound{Min: intp(10000)}
	s.Values["fuel_type"] = "hybrid"
	first := Encode(s)

	d := Decode(first)
	rebuilt := baseState()
	rebuilt.Category = &types.Ref{Slug: d.MakeSlug}
	rebuilt.Ranges = d.Ranges
	rebuilt.Values = d.Values
	if second := Encode(rebuilt); second != first {
		t.Errorf("encode(decode(encode(s))) = %s, want %s", second, first)
	}
}
