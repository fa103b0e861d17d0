package core

import "strings"

// PageQuery holds the listing parameters sent by clients.
type PageQuery struct {
	PageIndex int
	PerPage   int
	Search    string
	SortBy    string
}

// NoPaging is set on PageQuery.PerPage to fetch every row (CSV exports).
const NoPaging = -1

func (pq *PageQuery) Clean(defaultPerPage, maxPerPage int) {
	pq.Search = CleanString(pq.Search)
	pq.SortBy = CleanString(pq.SortBy)
	if pq.PageIndex < 1 {
		pq.PageIndex = 1
	}
	if pq.PerPage == NoPaging {
		return
	}
	if pq.PerPage < 1 {
		pq.PerPage = defaultPerPage
	}
	if maxPerPage > 0 && pq.PerPage > maxPerPage {
		pq.PerPage = maxPerPage
	}
}

// IsPaged reports whether only one page of rows is wanted.
func (pq *PageQuery) IsPaged() bool {
	return pq != nil && pq.PerPage > 0
}

// Ordering resolves SortBy against the allowed sort keys.
// Unknown keys are ignored.
func (pq *PageQuery) Ordering(sortFields map[string]string) (DBOrdering, bool) {
	if pq == nil || pq.SortBy == "" {
		return DBOrdering{}, false
	}
	key := pq.SortBy
	descending := strings.HasPrefix(key, "-")
	if descending {
		key = key[1:] // drop "-"
	}
	field, ok := sortFields[key]
	if !ok {
		return DBOrdering{}, false
	}
	return DBOrdering{Field: field, Ascending: !descending}, true
}

// Pagination is the page metadata returned alongside paginated rows.
type Pagination struct {
	Count      int  `json:"count"`
	TotalPages int  `json:"totalPages"`
	IsNext     bool `json:"isNext"`
	IsPrev     bool `json:"isPrev"`
	NextPage   *int `json:"nextPage"`
}

// NewPagination computes the page metadata for `count` rows.
// PageIndex is clamped to the last page when it is out of range.
func NewPagination(pq *PageQuery, count int) Pagination {
	totalPages := 1
	if pq.PerPage > 0 && count > 0 {
		totalPages = (count + pq.PerPage - 1) / pq.PerPage
	}
	if pq.PageIndex > totalPages {
		pq.PageIndex = totalPages
	}
	if pq.PageIndex < 1 {
		pq.PageIndex = 1
	}

	p := Pagination{
		Count:      count,
		TotalPages: totalPages,
		IsNext:     pq.PageIndex < totalPages,
		IsPrev:     pq.PageIndex > 1,
	}
	if p.IsNext {
		next := pq.PageIndex + 1
		p.NextPage = &next
	}
	return p
}

// Offset returns the number of rows to skip for the current page.
func (pq *PageQuery) Offset() int {
	return (pq.PageIndex - 1) * pq.PerPage
}
