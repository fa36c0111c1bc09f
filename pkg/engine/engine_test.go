package engine

import (
	"errors"
	"testing"

	"github.com/bilhallen/filter-engine/pkg/types"
	"github.com/bilhallen/filter-engine/pkg/urlstate"
)

func TestInitGroupIsIdempotent(t *testing.T) {
	e := New()
	first := e.InitGroup("home", GroupDefaults{Target: "#grid", BaseUrl: "/cars"})
	second := e.InitGroup("home", GroupDefaults{Target: "#other", BaseUrl: "/bikes"})
	if first != second {
		t.Fatal("InitGroup should return the same state instance")
	}
	if second.Target != "#grid" || second.BaseUrl != "/cars" {
		t.Errorf("Second init should not overwrite defaults, got %+v", second)
	}
}

func TestGetCreatesDefaultGroup(t *testing.T) {
	e := New()
	s := e.Get("sidebar")
	if s.Mode != types.ModeLive {
		t.Errorf("Expected live mode, got %s", s.Mode)
	}
	if s.BaseUrl != "/" {
		t.Errorf("Expected base url /, got %s", s.BaseUrl)
	}
	if s.HasFacets() {
		t.Errorf("Fresh group should have no facets, got %+v", s)
	}
}

func TestSetHierarchicalKeepsModel(t *testing.T) {
	e := New()
	if err := e.Set("home", types.KeyMake, "1", "bmw"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("home", types.KeyModel, "2", "bmw-2-series"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("home", types.KeyMake, "3", "volvo"); err != nil {
		t.Fatal(err)
	}
	s := e.Snapshot("home")
	if s.Category == nil || s.Category.Id != 3 || s.Category.Slug != "volvo" {
		t.Errorf("Expected category volvo(3), got %+v", s.Category)
	}
	if s.SubCategory == nil || s.SubCategory.Id != 2 {
		t.Errorf("Changing make should not clear model, got %+v", s.SubCategory)
	}
	if err := e.Set("home", types.KeyModel, ""); err != nil {
		t.Fatal(err)
	}
	if s := e.Snapshot("home"); s.SubCategory != nil {
		t.Errorf("Empty value should clear model, got %+v", s.SubCategory)
	}
}

func TestSetRangeSwapsInvertedBounds(t *testing.T) {
	e := New()
	if err := e.Set("home", types.KeyPriceMin, "50000"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("home", types.KeyPriceMax, "10000"); err != nil {
		t.Fatal(err)
	}
	b := e.Snapshot("home").Ranges["price"]
	if b == nil || b.Min == nil || b.Max == nil {
		t.Fatalf("Expected both bounds, got %+v", b)
	}
	if *b.Min != 10000 || *b.Max != 50000 {
		t.Errorf("Expected swapped bounds 10000-50000, got %d-%d", *b.Min, *b.Max)
	}
}

func TestSetRangeClearEmptiesSlot(t *testing.T) {
	e := New()
	if err := e.Set("home", types.KeyYearMin, "2018"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("home", types.KeyYearMin, ""); err != nil {
		t.Fatal(err)
	}
	if ranges := e.Snapshot("home").Ranges; len(ranges) != 0 {
		t.Errorf("Expected empty ranges after clear, got %v", ranges)
	}
}

func TestSetRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		key      types.FacetKey
		value    string
		expected error
	}{
		{"unknown key", types.FacetKey("color"), "red", types.ErrUnknownFacet},
		{"non numeric bound", types.KeyPriceMin, "cheap", types.ErrInvalidFacetValue},
		{"negative bound", types.KeyMileageMax, "-1", types.ErrInvalidFacetValue},
		{"illegal categorical", types.KeyFuelType, "plutonium", types.ErrInvalidFacetValue},
		{"non numeric id", types.KeyMake, "bmw", types.ErrInvalidFacetValue},
	}
	for _, test := range tests {
		e := New()
		notified := 0
		e.Subscribe("home", func(types.FacetKey, string, *types.FilterState) {
			notified++
		})
		err := e.Set("home", test.key, test.value)
		if !errors.Is(err, test.expected) {
			t.Errorf("%s: expected %v, got %v", test.name, test.expected, err)
		}
		if notified != 0 {
			t.Errorf("%s: rejected mutation must not notify", test.name)
		}
		if e.Snapshot("home").HasFacets() {
			t.Errorf("%s: rejected mutation must not change state", test.name)
		}
	}
}

func TestListenersRunInSubscriptionOrder(t *testing.T) {
	e := New()
	var order []string
	e.Subscribe("home", func(types.FacetKey, string, *types.FilterState) {
		order = append(order, "first")
	})
	e.Subscribe("home", func(types.FacetKey, string, *types.FilterState) {
		order = append(order, "second")
	})
	if err := e.Set("home", types.KeyFuelType, "diesel"); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("Expected [first second], got %v", order)
	}
}

func TestListenerCanMutateReentrant(t *testing.T) {
	e := New()
	e.Subscribe("home", func(key types.FacetKey, value string, _ *types.FilterState) {
		// Dependent reset: a make change invalidates the model.
		if key == types.KeyMake {
			if err := e.Set("home", types.KeyModel, ""); err != nil {
				t.Error(err)
			}
		}
	})
	if err := e.Set("home", types.KeyModel, "2"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("home", types.KeyMake, "3"); err != nil {
		t.Fatal(err)
	}
	if s := e.Snapshot("home"); s.SubCategory != nil {
		t.Errorf("Listener reset should have cleared the model, got %+v", s.SubCategory)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	e := New()
	count := 0
	unsubscribe := e.Subscribe("home", func(types.FacetKey, string, *types.FilterState) {
		count++
	})
	if err := e.Set("home", types.KeyBodyType, "suv"); err != nil {
		t.Fatal(err)
	}
	unsubscribe()
	if err := e.Set("home", types.KeyBodyType, "van"); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 notification, got %d", count)
	}
}

func TestGroupsAreIndependent(t *testing.T) {
	e := New()
	homeNotified := 0
	e.Subscribe("home", func(types.FacetKey, string, *types.FilterState) {
		homeNotified++
	})
	if err := e.Set("sidebar", types.KeyFuelType, "electric"); err != nil {
		t.Fatal(err)
	}
	if homeNotified != 0 {
		t.Errorf("Mutation of sidebar must not notify home, got %d", homeNotified)
	}
	if e.Snapshot("home").HasFacets() {
		t.Error("Mutation of sidebar must not touch home state")
	}
	if e.Snapshot("sidebar").Values["fuel_type"] != "electric" {
		t.Error("Sidebar mutation lost")
	}
}

func TestMutationsEncodeToCanonicalUrl(t *testing.T) {
	e := New()
	e.InitGroup("home", GroupDefaults{BaseUrl: "/cars"})
	if err := e.Set("home", types.KeyMake, "1", "bmw"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("home", types.KeyPriceMin, "10000"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("home", types.KeyPriceMax, "50000"); err != nil {
		t.Fatal(err)
	}
	expected := "/cars/filter/make:bmw/meta/price!range:10000_50000/"
	if got := urlstate.Encode(e.Snapshot("home")); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	e := New()
	if err := e.Set("home", types.KeyPriceMin, "1000"); err != nil {
		t.Fatal(err)
	}
	snap := e.Snapshot("home")
	if err := e.Set("home", types.KeyPriceMin, "9000"); err != nil {
		t.Fatal(err)
	}
	if *snap.Ranges["price"].Min != 1000 {
		t.Errorf("Snapshot must not see later writes, got %d", *snap.Ranges["price"].Min)
	}
}
