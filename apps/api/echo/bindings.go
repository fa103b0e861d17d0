package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/campusdash/core"
)

// listing query params
const (
	pageIndexParam = "pageIndex"
	perPageParam   = "perPage"
	searchParam    = "search"
	sortByParam    = "sortBy"
)

// bindPageQuery reads the listing params; malformed numbers fall back to the defaults.
func (s *Server) bindPageQuery(ctx echo.Context) core.PageQuery {
	pq := core.PageQuery{
		Search: ctx.QueryParam(searchParam),
		SortBy: ctx.QueryParam(sortByParam),
	}
	if val, err := strconv.Atoi(ctx.QueryParam(pageIndexParam)); err == nil {
		pq.PageIndex = val
	}
	if val, err := strconv.Atoi(ctx.QueryParam(perPageParam)); err == nil && val > 0 {
		pq.PerPage = val
	}

	conf := s.deps.Conf.Pagination
	pq.Clean(conf.PerPage, conf.MaxPerPage)
	return pq
}
