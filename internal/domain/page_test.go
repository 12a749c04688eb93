package domain

import (
	"reflect"
	"testing"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		total int
		want  Pagination
	}{
		{
			name:  "empty list still renders one page",
			page:  1,
			total: 0,
			want:  Pagination{CurrentPage: 1, TotalPages: 1, PerPage: PageSize, Total: 0, PrevPage: 0, NextPage: 2},
		},
		{
			name:  "partial last page rounds up",
			page:  1,
			total: 25,
			want:  Pagination{CurrentPage: 1, TotalPages: 3, PerPage: PageSize, Total: 25, HasNext: true, PrevPage: 0, NextPage: 2},
		},
		{
			name:  "middle page has both directions",
			page:  2,
			total: 30,
			want:  Pagination{CurrentPage: 2, TotalPages: 3, PerPage: PageSize, Total: 30, HasPrevious: true, HasNext: true, PrevPage: 1, NextPage: 3},
		},
		{
			name:  "page past the end clamps to last",
			page:  9,
			total: 25,
			want:  Pagination{CurrentPage: 3, TotalPages: 3, PerPage: PageSize, Total: 25, HasPrevious: true, PrevPage: 2, NextPage: 4},
		},
		{
			name:  "zero page clamps to first",
			page:  0,
			total: 5,
			want:  Pagination{CurrentPage: 1, TotalPages: 1, PerPage: PageSize, Total: 5, PrevPage: 0, NextPage: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.total)
			if got != tt.want {
				t.Errorf("NewPagination(%d, %d) = %+v, want %+v", tt.page, tt.total, got, tt.want)
			}
		})
	}
}

func TestPageRange(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"single page", 1, 1, []int{1}},
		{"short range in full", 3, 7, []int{1, 2, 3, 4, 5, 6, 7}},
		{"start of long range", 1, 10, []int{1, 2, -1, 10}},
		{"ellipsis after window", 2, 10, []int{1, 2, 3, -1, 10}},
		{"middle of long range", 5, 10, []int{1, -1, 4, 5, 6, -1, 10}},
		{"end of long range", 10, 10, []int{1, -1, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageRange(tt.current, tt.total)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PageRange(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
			}
		})
	}
}
