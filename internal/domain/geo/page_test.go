package geo

import "testing"

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{Page: 0, PageSize: 0}, PageRequest{Page: 1, PageSize: DefaultPageSize}},
		{PageRequest{Page: -3, PageSize: 5}, PageRequest{Page: 1, PageSize: 5}},
		{PageRequest{Page: 2, PageSize: 1000}, PageRequest{Page: 2, PageSize: MaxPageSize}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("Normalize(%+v): want=%+v got=%+v", tc.in, tc.want, got)
		}
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(25, 10); got != 3 {
		t.Fatalf("TotalPages(25,10): want=3 got=%d", got)
	}
	if got := TotalPages(20, 10); got != 2 {
		t.Fatalf("TotalPages(20,10): want=2 got=%d", got)
	}
	if got := TotalPages(0, 10); got != 0 {
		t.Fatalf("TotalPages(0,10): want=0 got=%d", got)
	}
}

func TestNewPageNeverNilData(t *testing.T) {
	p := NewPage[Country](nil, 0, PageRequest{Page: 1, PageSize: 10})
	if p.Data == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}
