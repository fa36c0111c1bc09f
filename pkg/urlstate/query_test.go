package urlstate

import (
	"net/url"
	"testing"
)

func TestDecodeQueryDefaults(t *testing.T) {
	q, err := DecodeQuery(url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if q.PageSize != 20 {
		t.Errorf("Expected default page size 20, got %d", q.PageSize)
	}
	if q.IncludeSold {
		t.Error("Sold listings should be excluded by default")
	}
}

func TestDecodeQueryIgnoresUnknownKeys(t *testing.T) {
	values := url.Values{
		"make":       {"1"},
		"utm_source": {"newsletter"},
	}
	q, err := DecodeQuery(values)
	if err != nil {
		t.Fatalf("Unknown keys must not fail decoding: %v", err)
	}
	if q.Make != 1 {
		t.Errorf("Expected make 1, got %d", q.Make)
	}
}

func TestDecodeQueryClampsPageSize(t *testing.T) {
	tests := []struct {
		size     string
		expected int
	}{
		{"0", 20},
		{"5", 5},
		{"100", 100},
		{"5000", 100},
	}
	for _, test := range tests {
		q, err := DecodeQuery(url.Values{"size": {test.size}})
		if err != nil {
			t.Fatal(err)
		}
		if q.PageSize != test.expected {
			t.Errorf("size=%s: expected %d, got %d", test.size, test.expected, q.PageSize)
		}
	}
}

func TestFlatQueryToState(t *testing.T) {
	q, err := DecodeQuery(url.Values{
		"make":      {"1"},
		"model":     {"2"},
		"price_min": {"50000"},
		"price_max": {"10000"},
		"year_min":  {"2018"},
		"fuel_type": {"diesel"},
		"body_type": {"hovercraft"},
		"sold":      {"true"},
	})
	if err != nil {
		t.Fatal(err)
	}
	s := q.ToState("/cars")

	if s.Category == nil || s.Category.Id != 1 {
		t.Errorf("Expected category 1, got %+v", s.Category)
	}
	if s.SubCategory == nil || s.SubCategory.Id != 2 {
		t.Errorf("Expected subcategory 2, got %+v", s.SubCategory)
	}
	price := s.Ranges["price"]
	if price == nil || *price.Min != 10000 || *price.Max != 50000 {
		t.Errorf("Inverted bounds should normalize to 10000-50000, got %+v", price)
	}
	year := s.Ranges["year"]
	if year == nil || year.Min == nil || *year.Min != 2018 || year.Max != nil {
		t.Errorf("Expected open-ended year from 2018, got %+v", year)
	}
	if s.Values["fuel_type"] != "diesel" {
		t.Errorf("Expected fuel_type diesel, got %s", s.Values["fuel_type"])
	}
	if _, ok := s.Values["body_type"]; ok {
		t.Error("Illegal body_type value should be dropped")
	}
	if !s.IncludeSold {
		t.Error("sold=true should include sold listings")
	}
	if s.BaseUrl != "/cars" {
		t.Errorf("Expected base url /cars, got %s", s.BaseUrl)
	}
}
