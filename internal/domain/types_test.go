package domain

import "testing"

func TestNewPaginationClampsPage(t *testing.T) {
	cases := []struct {
		raw   string
		total int
		page  int
		pages int
	}{
		{"", 25, 1, 3},
		{"abc", 25, 1, 3},
		{"0", 25, 1, 3},
		{"-4", 25, 1, 3},
		{"2", 25, 2, 3},
		{"99", 25, 3, 3},
		{"5", 0, 1, 1},
	}
	for _, tc := range cases {
		p := NewPagination(tc.raw, BookingsPageSize, tc.total)
		if p.Page != tc.page || p.TotalPages != tc.pages {
			t.Fatalf("page %q total %d: got page %d of %d, want %d of %d", tc.raw, tc.total, p.Page, p.TotalPages, tc.page, tc.pages)
		}
	}

	p := NewPagination("3", BookingsPageSize, 25)
	if p.Offset() != 20 || p.HasNext || !p.HasPrevious {
		t.Fatalf("unexpected last page %+v offset %d", p, p.Offset())
	}
}
