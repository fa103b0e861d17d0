// Package sqlxrepos implements the domain repositories with sqlx and squirrel.
// Queries are built with `?` placeholders and rebound to the engine's bindvar.
package sqlxrepos

import (
	"context"
	"database/sql"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// listing describes how a paginated query may be searched and sorted.
type listing struct {
	search       []string          // columns matched by PageQuery.Search
	sortFields   map[string]string // sortBy key => SQL expression
	defaultOrder []string
}

func selectAll(ctx context.Context, exec core.DBExecutor, dest interface{}, qb sq.Sqlizer) error {
	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return exec.SelectContext(ctx, dest, exec.Rebind(q), args...)
}

func selectOne(ctx context.Context, exec core.DBExecutor, dest interface{}, qb sq.Sqlizer) error {
	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return exec.GetContext(ctx, dest, exec.Rebind(q), args...)
}

func execute(ctx context.Context, exec core.DBExecutor, qb sq.Sqlizer) (sql.Result, error) {
	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return exec.ExecContext(ctx, exec.Rebind(q), args...)
}

func count(ctx context.Context, exec core.DBExecutor, qb sq.SelectBuilder) (int, error) {
	var n int
	err := selectOne(ctx, exec, &n, builder.Select("COUNT(*)").FromSelect(qb, "t"))
	return n, err
}

// exists reports whether qb matches at least one row.
func exists(ctx context.Context, exec core.DBExecutor, qb sq.SelectBuilder) (bool, error) {
	n, err := count(ctx, exec, qb.Limit(1))
	return n > 0, err
}

// paginate applies the search and ordering of `pq` to qb, then selects the requested page into dest.
// pq.PageIndex is clamped to the last page.
func paginate(ctx context.Context, exec core.DBExecutor, dest interface{}, qb sq.SelectBuilder, pq *core.PageQuery, lst listing) (core.Pagination, error) {
	if pq == nil {
		pq = &core.PageQuery{PerPage: core.NoPaging}
	}

	if pq.Search != "" && len(lst.search) > 0 {
		val := "%" + strings.ToLower(pq.Search) + "%"
		or := make(sq.Or, 0, len(lst.search))
		for _, col := range lst.search {
			or = append(or, sq.Expr("LOWER("+col+") LIKE ?", val))
		}
		qb = qb.Where(or)
	}

	total := -1
	if pq.IsPaged() {
		n, err := count(ctx, exec, qb)
		if err != nil {
			return core.Pagination{}, errors.Wrap(err, "counting rows")
		}
		total = n
	}

	if ord, ok := pq.Ordering(lst.sortFields); ok {
		qb = qb.OrderBy(ord.String())
	}
	qb = qb.OrderBy(lst.defaultOrder...)

	if total >= 0 {
		pagination := core.NewPagination(pq, total)
		qb = qb.Limit(uint64(pq.PerPage)).Offset(uint64(pq.Offset()))
		if err := selectAll(ctx, exec, dest, qb); err != nil {
			return core.Pagination{}, errors.Wrap(err, "selecting page")
		}
		return pagination, nil
	}

	if err := selectAll(ctx, exec, dest, qb); err != nil {
		return core.Pagination{}, errors.Wrap(err, "selecting rows")
	}
	return core.NewPagination(pq, rowCount(dest)), nil
}

// rowCount returns the length of the slice dest points to.
func rowCount(dest interface{}) int {
	v := reflect.Indirect(reflect.ValueOf(dest))
	if v.Kind() != reflect.Slice {
		return 0
	}
	return v.Len()
}

// trapNoRowsErr maps sql.ErrNoRows to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func excludeIDs(qb sq.SelectBuilder, col string, ids []string) sq.SelectBuilder {
	if len(ids) > 0 {
		qb = qb.Where(sq.NotEq{col: ids})
	}
	return qb
}
