package paging

import "testing"

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, pageSize, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{3, 10, 1},
		{25, 10, 3},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.pageSize); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.total, c.pageSize, got, c.want)
		}
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name       string
		p          Params
		total      int
		start, end int
	}{
		{"first page", Params{Page: 1, PageSize: 10}, 25, 0, 10},
		{"middle page", Params{Page: 2, PageSize: 10}, 25, 10, 20},
		{"last partial page", Params{Page: 3, PageSize: 10}, 25, 20, 25},
		{"beyond last page", Params{Page: 4, PageSize: 10}, 25, 25, 25},
		{"empty collection", Params{Page: 1, PageSize: 10}, 0, 0, 0},
		{"zero page clamps to first", Params{Page: 0, PageSize: 10}, 5, 0, 5},
	}
	for _, c := range cases {
		start, end := c.p.Window(c.total)
		if start != c.start || end != c.end {
			t.Errorf("%s: Window(%d) = [%d, %d), want [%d, %d)", c.name, c.total, start, end, c.start, c.end)
		}
	}
}

func TestHasNextPrevious(t *testing.T) {
	p := Params{Page: 1, PageSize: 10}
	if !p.HasNext(25) {
		t.Error("page 1 of 25 should have a next page")
	}
	if p.HasPrevious() {
		t.Error("page 1 should not have a previous page")
	}
	p.Page = 3
	if p.HasNext(25) {
		t.Error("page 3 of 25 should not have a next page")
	}
	if !p.HasPrevious() {
		t.Error("page 3 should have a previous page")
	}
}
