package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageQuery_Clean(t *testing.T) {
	tests := []struct {
		name string
		pq   PageQuery
		want PageQuery
	}{
		{name: "defaults", pq: PageQuery{}, want: PageQuery{PageIndex: 1, PerPage: 10}},
		{name: "max per page", pq: PageQuery{PageIndex: 3, PerPage: 500}, want: PageQuery{PageIndex: 3, PerPage: 100}},
		{name: "negative page", pq: PageQuery{PageIndex: -2, PerPage: 5}, want: PageQuery{PageIndex: 1, PerPage: 5}},
		{name: "no paging", pq: PageQuery{PerPage: NoPaging}, want: PageQuery{PageIndex: 1, PerPage: NoPaging}},
		{
			name: "trims search & sort",
			pq:   PageQuery{Search: "  kochi ", SortBy: " -title "},
			want: PageQuery{PageIndex: 1, PerPage: 10, Search: "kochi", SortBy: "-title"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := tt.pq
			pq.Clean(10, 100)
			assert.Equal(t, tt.want, pq)
		})
	}
}

func TestPageQuery_Ordering(t *testing.T) {
	sortFields := map[string]string{"title": "o.title", "karma": "karma"}

	tests := []struct {
		name   string
		sortBy string
		want   DBOrdering
		wantOk bool
	}{
		{name: "empty", sortBy: ""},
		{name: "unknown", sortBy: "password"},
		{name: "unknown descending", sortBy: "-password"},
		{name: "ascending", sortBy: "title", want: DBOrdering{Field: "o.title", Ascending: true}, wantOk: true},
		{name: "descending", sortBy: "-karma", want: DBOrdering{Field: "karma"}, wantOk: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := &PageQuery{SortBy: tt.sortBy}
			got, ok := pq.Ordering(sortFields)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	var pq *PageQuery
	_, ok := pq.Ordering(sortFields)
	assert.False(t, ok)
	assert.Equal(t, "karma DESC", DBOrdering{Field: "karma"}.String())
}

func TestNewPagination(t *testing.T) {
	two, three := 2, 3

	tests := []struct {
		name          string
		pq            PageQuery
		count         int
		want          Pagination
		wantPageIndex int
	}{
		{name: "no rows", pq: PageQuery{PageIndex: 1, PerPage: 10}, want: Pagination{TotalPages: 1}, wantPageIndex: 1},
		{
			name: "first page", pq: PageQuery{PageIndex: 1, PerPage: 10}, count: 25,
			want: Pagination{Count: 25, TotalPages: 3, IsNext: true, NextPage: &two}, wantPageIndex: 1,
		},
		{
			name: "middle page", pq: PageQuery{PageIndex: 2, PerPage: 10}, count: 25,
			want: Pagination{Count: 25, TotalPages: 3, IsNext: true, IsPrev: true, NextPage: &three}, wantPageIndex: 2,
		},
		{
			name: "last page", pq: PageQuery{PageIndex: 3, PerPage: 10}, count: 30,
			want: Pagination{Count: 30, TotalPages: 3, IsPrev: true}, wantPageIndex: 3,
		},
		{
			name: "out of range clamps to the last page", pq: PageQuery{PageIndex: 9, PerPage: 10}, count: 11,
			want: Pagination{Count: 11, TotalPages: 2, IsPrev: true}, wantPageIndex: 2,
		},
		{
			name: "no paging", pq: PageQuery{PageIndex: 1, PerPage: NoPaging}, count: 42,
			want: Pagination{Count: 42, TotalPages: 1}, wantPageIndex: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := tt.pq
			assert.Equal(t, tt.want, NewPagination(&pq, tt.count))
			assert.Equal(t, tt.wantPageIndex, pq.PageIndex)
		})
	}

	pq := PageQuery{PageIndex: 3, PerPage: 20}
	assert.Equal(t, 40, pq.Offset())
}
