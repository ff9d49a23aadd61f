package billing

import (
	"testing"
	"time"

	"github.com/hms/console/internal/view"
	"github.com/hms/console/pkg/paging"
)

func sampleBills() []Bill {
	return []Bill{
		{ID: "b1", PatientName: "Ana Flores", Description: "MRI scan", Amount: 450.5, Status: "pending",
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "b2", PatientName: "Ben Okafor", Description: "Consultation", Amount: 80, Status: "paid",
			CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{ID: "b3", PatientName: "Chloe Martin", Description: "X-ray", Amount: 120, Status: "pending",
			CreatedAt: time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)},
	}
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	fields := Fields()

	res := view.Derive(sampleBills(), fields, view.Query{
		Filters: view.FilterState{"search": "mri"},
	})
	if len(res.Items) != 1 || res.Items[0].ID != "b1" {
		t.Errorf("search=mri matched %+v, want only b1", res.Items)
	}

	res = view.Derive(sampleBills(), fields, view.Query{
		Filters: view.FilterState{"search": "chloe"},
	})
	if len(res.Items) != 1 || res.Items[0].ID != "b3" {
		t.Errorf("search=chloe matched %+v, want only b3", res.Items)
	}
}

func TestStatusFilterAndAmountSort(t *testing.T) {
	res := view.Derive(sampleBills(), Fields(), view.Query{
		Filters: view.FilterState{"status": "pending"},
		Sort:    view.SortState{Key: "amount", Direction: view.Descending},
		Page:    paging.Params{Page: 1, PageSize: 10},
	})
	if res.Total != 2 {
		t.Fatalf("Total = %d, want 2 pending bills", res.Total)
	}
	if res.Items[0].ID != "b1" || res.Items[1].ID != "b3" {
		t.Errorf("order = %s,%s, want b1,b3 (amount desc)", res.Items[0].ID, res.Items[1].ID)
	}
}
