package view

import (
	"reflect"
	"testing"
	"time"

	"github.com/hms/console/pkg/paging"
)

type bill struct {
	ID          string
	PatientName string
	Status      string
	Amount      float64
	CreatedAt   time.Time
}

func billFields() Fields[bill] {
	return Fields[bill]{
		Text: map[string]func(bill) string{
			"search": func(b bill) string { return b.PatientName },
		},
		Exact: map[string]func(bill) string{
			"status": func(b bill) string { return b.Status },
		},
		Sort: map[string]Comparator[bill]{
			"amount":    NumberKey(func(b bill) float64 { return b.Amount }),
			"createdAt": TimeKey(func(b bill) time.Time { return b.CreatedAt }),
			"patient":   StringKey(func(b bill) string { return b.PatientName }),
		},
	}
}

func ids(items []bill) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}

func TestDeriveStatusFilter(t *testing.T) {
	// 12 bills, 3 of them paid: the derived view is exactly those 3 and they
	// fit on a single page of 10.
	items := make([]bill, 0, 12)
	for i := 0; i < 12; i++ {
		status := "pending"
		if i%4 == 0 {
			status = "paid"
		}
		items = append(items, bill{ID: string(rune('a' + i)), Status: status})
	}

	res := Derive(items, billFields(), Query{
		Filters: FilterState{"status": "paid"},
		Page:    paging.Params{Page: 1, PageSize: 10},
	})

	if res.Total != 3 {
		t.Fatalf("Total = %d, want 3", res.Total)
	}
	if res.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", res.TotalPages)
	}
	for _, b := range res.Items {
		if b.Status != "paid" {
			t.Errorf("record %s has status %q, want paid", b.ID, b.Status)
		}
	}
}

func TestDeriveTextFilterCaseInsensitive(t *testing.T) {
	items := []bill{
		{ID: "1", PatientName: "Alice Johnson"},
		{ID: "2", PatientName: "Bob Smith"},
		{ID: "3", PatientName: "alice cooper"},
	}
	res := Derive(items, billFields(), Query{
		Filters: FilterState{"search": "ALICE"},
		Page:    paging.Params{Page: 1, PageSize: 10},
	})
	if got, want := ids(res.Items), []string{"1", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("derived ids = %v, want %v", got, want)
	}
}

func TestDeriveFiltersAreANDed(t *testing.T) {
	items := []bill{
		{ID: "1", PatientName: "Alice", Status: "paid"},
		{ID: "2", PatientName: "Alice", Status: "pending"},
		{ID: "3", PatientName: "Bob", Status: "paid"},
	}
	res := Derive(items, billFields(), Query{
		Filters: FilterState{"search": "alice", "status": "paid"},
		Page:    paging.Params{Page: 1, PageSize: 10},
	})
	if got, want := ids(res.Items), []string{"1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("derived ids = %v, want %v", got, want)
	}
}

func TestDeriveSortByTimestamp(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []bill{
		{ID: "a", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "b", CreatedAt: base.Add(1 * time.Hour)},
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
	}

	desc := Derive(items, billFields(), Query{
		Sort: SortState{Key: "createdAt", Direction: Descending},
		Page: paging.Params{Page: 1, PageSize: 10},
	})
	if got, want := ids(desc.Items), []string{"a", "c", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("descending ids = %v, want %v", got, want)
	}

	asc := Derive(items, billFields(), Query{
		Sort: SortState{Key: "createdAt", Direction: Ascending},
		Page: paging.Params{Page: 1, PageSize: 10},
	})
	if got, want := ids(asc.Items), []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ascending ids = %v, want %v", got, want)
	}
}

func TestDeriveSortIsStable(t *testing.T) {
	items := []bill{
		{ID: "1", Amount: 50},
		{ID: "2", Amount: 50},
		{ID: "3", Amount: 10},
		{ID: "4", Amount: 50},
	}
	res := Derive(items, billFields(), Query{
		Sort: SortState{Key: "amount", Direction: Ascending},
		Page: paging.Params{Page: 1, PageSize: 10},
	})
	// Equal amounts keep fetch order.
	if got, want := ids(res.Items), []string{"3", "1", "2", "4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("stable sort ids = %v, want %v", got, want)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	items := []bill{
		{ID: "1", PatientName: "Alice", Status: "paid", Amount: 10},
		{ID: "2", PatientName: "Bob", Status: "pending", Amount: 20},
		{ID: "3", PatientName: "Carol", Status: "paid", Amount: 5},
	}
	q := Query{
		Filters: FilterState{"status": "paid"},
		Sort:    SortState{Key: "amount", Direction: Descending},
		Page:    paging.Params{Page: 1, PageSize: 10},
	}
	first := Derive(items, billFields(), q)
	second := Derive(items, billFields(), q)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Derive is not idempotent: %+v vs %+v", first, second)
	}
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	items := []bill{{ID: "b", Amount: 2}, {ID: "a", Amount: 1}}
	Derive(items, billFields(), Query{
		Sort: SortState{Key: "amount", Direction: Ascending},
		Page: paging.Params{Page: 1, PageSize: 10},
	})
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Errorf("input slice was reordered: %v", ids(items))
	}
}

func TestDerivePageBeyondEnd(t *testing.T) {
	items := []bill{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	res := Derive(items, billFields(), Query{
		Page: paging.Params{Page: 5, PageSize: 10},
	})
	if len(res.Items) != 0 {
		t.Errorf("page beyond end returned %d items, want 0", len(res.Items))
	}
	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
}

func TestDeriveUnknownFilterExcludes(t *testing.T) {
	items := []bill{{ID: "1"}}
	res := Derive(items, billFields(), Query{
		Filters: FilterState{"nonexistent": "x"},
		Page:    paging.Params{Page: 1, PageSize: 10},
	})
	if res.Total != 0 {
		t.Errorf("unknown filter admitted %d records, want 0", res.Total)
	}
}
