package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/karma"
	"github.com/trezcool/campusdash/core/organization"
	"github.com/trezcool/campusdash/core/user"
	"github.com/trezcool/campusdash/core/zonal"
)

type zonalRepository struct {
	exec core.DBExecutor
}

var _ zonal.Repository = (*zonalRepository)(nil) // interface compliance check

func NewZonalRepository(exec core.DBExecutor) *zonalRepository {
	return &zonalRepository{exec: exec}
}

// membersQuery selects from the organisation links of the users that belong to a district.
func membersQuery(cols ...string) sq.SelectBuilder {
	return builder.Select(cols...).
		From("user_organization_link l").
		Join("organization o ON o.id = l.org_id").
		Join("district d ON d.id = o.district_id")
}

func (repo zonalRepository) GetScope(ctx context.Context, userID string) (zonal.Scope, error) {
	qb := membersQuery(
		"u.id AS user_id", "u.full_name", "o.id AS org_id",
		"d.id AS district_id", "z.id AS zone_id", "z.name AS zone_name",
	).
		Join("zone z ON z.id = d.zone_id").
		Join("users u ON u.id = l.user_id").
		Where(sq.Eq{"l.user_id": userID, "o.org_type": organization.TypeCollege}).
		OrderBy("l.created_at ASC", "l.id ASC").
		Limit(1)

	var scope zonal.Scope
	if err := selectOne(ctx, repo.exec, &scope, qb); err != nil {
		return zonal.Scope{}, trapNoRowsErr(err, zonal.ErrNoCollegeLink, "getting user college link")
	}
	return scope, nil
}

func (repo zonalRepository) ZoneScores(ctx context.Context) ([]karma.Score, error) {
	qb := membersQuery("d.zone_id AS key", "COALESCE(SUM(tk.karma), 0) AS karma").
		LeftJoin("total_karma tk ON tk.user_id = l.user_id").
		Where("d.zone_id IS NOT NULL").
		GroupBy("d.zone_id").
		OrderBy("d.zone_id ASC")

	scores := make([]karma.Score, 0)
	if err := selectAll(ctx, repo.exec, &scores, qb); err != nil {
		return nil, errors.Wrap(err, "summing zone karma")
	}
	return scores, nil
}

func (repo zonalRepository) CountZoneMembers(ctx context.Context, zoneID string) (int, error) {
	var n int
	if err := selectOne(ctx, repo.exec, &n, membersQuery("COUNT(*)").Where(sq.Eq{"d.zone_id": zoneID})); err != nil {
		return 0, errors.Wrap(err, "counting zone members")
	}
	return n, nil
}

func (repo zonalRepository) CountActiveMembers(ctx context.Context, zoneID string, w karma.Window) (int, error) {
	qb := builder.Select("COUNT(DISTINCT k.id)").
		From("karma_activity_log k").
		Join("user_organization_link l ON l.user_id = k.user_id").
		Join("organization o ON o.id = l.org_id").
		Join("district d ON d.id = o.district_id").
		Where(sq.Eq{"d.zone_id": zoneID}).
		Where(sq.GtOrEq{"k.created_at": w.Start}).
		Where(sq.Lt{"k.created_at": w.Until()})

	var n int
	if err := selectOne(ctx, repo.exec, &n, qb); err != nil {
		return 0, errors.Wrap(err, "counting active members")
	}
	return n, nil
}

func (repo zonalRepository) DistrictScores(ctx context.Context, zoneID string) ([]karma.Score, error) {
	qb := membersQuery("o.district_id AS key", "COALESCE(SUM(tk.karma), 0) AS karma").
		LeftJoin("total_karma tk ON tk.user_id = l.user_id").
		Where(sq.Eq{"d.zone_id": zoneID, "l.verified": true}).
		GroupBy("o.district_id").
		OrderBy("o.district_id ASC")

	scores := make([]karma.Score, 0)
	if err := selectAll(ctx, repo.exec, &scores, qb); err != nil {
		return nil, errors.Wrap(err, "summing district karma")
	}
	return scores, nil
}

func (repo zonalRepository) GetDistricts(ctx context.Context, ids ...string) ([]zonal.District, error) {
	dists := make([]zonal.District, 0, len(ids))
	if len(ids) == 0 {
		return dists, nil
	}
	qb := builder.Select("id", "name").From("district").Where(sq.Eq{"id": ids})
	if err := selectAll(ctx, repo.exec, &dists, qb); err != nil {
		return nil, errors.Wrap(err, "getting districts")
	}
	return dists, nil
}

func (repo zonalRepository) DistrictColleges(ctx context.Context, districtID string) ([]zonal.CollegeLevels, error) {
	qb := builder.Select("id", "title", "code").
		From("organization").
		Where(sq.Eq{"district_id": districtID, "org_type": organization.TypeCollege}).
		OrderBy("title ASC", "id ASC")

	colleges := make([]zonal.CollegeLevels, 0)
	if err := selectAll(ctx, repo.exec, &colleges, qb); err != nil {
		return nil, errors.Wrap(err, "querying district colleges")
	}
	return colleges, nil
}

type levelCountRow struct {
	OrgID string `db:"org_id"`
	zonal.LevelCount
}

func (repo zonalRepository) LevelCounts(ctx context.Context, orgIDs ...string) (map[string][]zonal.LevelCount, error) {
	counts := make(map[string][]zonal.LevelCount, len(orgIDs))
	if len(orgIDs) == 0 {
		return counts, nil
	}

	qb := builder.Select("o.id AS org_id", "lv.level_order", "COUNT(DISTINCT ul.user_id) AS students_count").
		From("organization o").
		JoinClause("CROSS JOIN level lv").
		LeftJoin("user_organization_link l ON l.org_id = o.id").
		LeftJoin("user_lvl_link ul ON ul.level_id = lv.id AND ul.user_id = l.user_id").
		Where(sq.Eq{"o.id": orgIDs}).
		GroupBy("o.id", "lv.id", "lv.level_order").
		OrderBy("o.id ASC", "lv.level_order ASC")

	var rows []levelCountRow
	if err := selectAll(ctx, repo.exec, &rows, qb); err != nil {
		return nil, errors.Wrap(err, "counting students per level")
	}
	for _, row := range rows {
		counts[row.OrgID] = append(counts[row.OrgID], row.LevelCount)
	}
	return counts, nil
}

var studentListing = listing{
	search: []string{"u.full_name", "u.muid"},
	sortFields: map[string]string{
		"name":       "u.full_name",
		"muid":       "u.muid",
		"karma":      "COALESCE(tk.karma, 0)",
		"level":      "fl.level_order",
		"created_at": "l.created_at",
	},
	defaultOrder: []string{"l.created_at ASC", "l.id ASC"},
}

func (repo zonalRepository) QueryStudents(ctx context.Context, zoneID string, pq *core.PageQuery) ([]zonal.Student, core.Pagination, error) {
	qb := membersQuery(
		"u.id AS user_id", "u.full_name", "u.muid",
		"COALESCE(tk.karma, 0) AS karma", "fl.name AS level", "l.created_at",
	).
		Join("users u ON u.id = l.user_id").
		LeftJoin("total_karma tk ON tk.user_id = u.id").
		LeftJoin("level fl ON fl.id = (" +
			"SELECT ul.level_id FROM user_lvl_link ul WHERE ul.user_id = u.id ORDER BY ul.created_at, ul.id LIMIT 1)").
		Where(sq.Eq{"d.zone_id": zoneID, "o.org_type": organization.TypeCollege})

	students := make([]zonal.Student, 0)
	pagination, err := paginate(ctx, repo.exec, &students, qb, pq, studentListing)
	if err != nil {
		return nil, core.Pagination{}, errors.Wrap(err, "querying zone students")
	}
	return students, pagination, nil
}

func (repo zonalRepository) UserScores(ctx context.Context) ([]karma.Score, error) {
	qb := builder.Select("user_id AS key", "karma").
		From("total_karma").
		Where("karma IS NOT NULL").
		OrderBy("karma DESC", "user_id ASC")

	scores := make([]karma.Score, 0)
	if err := selectAll(ctx, repo.exec, &scores, qb); err != nil {
		return nil, errors.Wrap(err, "querying karma leaderboard")
	}
	return scores, nil
}

var collegeListing = listing{
	search: []string{"o.title", "o.code", "lu.full_name", "lu.mobile"},
	sortFields: map[string]string{
		"title":  "o.title",
		"code":   "o.code",
		"level":  "c.level",
		"lead":   "lu.full_name",
		"mobile": "lu.mobile",
	},
	defaultOrder: []string{"o.title ASC", "o.id ASC"},
}

func (repo zonalRepository) QueryColleges(ctx context.Context, zoneID string, pq *core.PageQuery) ([]zonal.College, core.Pagination, error) {
	qb := builder.Select("o.title", "o.code", "c.level", "lu.full_name AS lead", "lu.mobile AS lead_number").
		From("organization o").
		Join("district d ON d.id = o.district_id").
		LeftJoin("college c ON c.id = (" +
			"SELECT c2.id FROM college c2 WHERE c2.org_id = o.id ORDER BY c2.created_at, c2.id LIMIT 1)").
		LeftJoin("users lu ON lu.id = ("+
			"SELECT cl.user_id FROM user_organization_link cl "+
			"JOIN user_role_link r ON r.user_id = cl.user_id "+
			"WHERE cl.org_id = o.id AND r.role = ? ORDER BY cl.created_at, cl.id LIMIT 1)", user.RoleCampusLead).
		Where(sq.Eq{"d.zone_id": zoneID, "o.org_type": organization.TypeCollege})

	colleges := make([]zonal.College, 0)
	pagination, err := paginate(ctx, repo.exec, &colleges, qb, pq, collegeListing)
	if err != nil {
		return nil, core.Pagination{}, errors.Wrap(err, "querying zone colleges")
	}
	return colleges, pagination, nil
}
