package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/organization"
)

type organizationRepository struct {
	exec core.DBExecutor
}

var _ organization.Repository = (*organizationRepository)(nil) // interface compliance check

func NewOrganizationRepository(exec core.DBExecutor) *organizationRepository {
	return &organizationRepository{exec: exec}
}

type organizationRow struct {
	ID            string      `db:"id"`
	Title         string      `db:"title"`
	Code          string      `db:"code"`
	OrgType       string      `db:"org_type"`
	AffiliationID null.String `db:"affiliation_id"`
	DistrictID    null.String `db:"district_id"`
	CreatedByID   string      `db:"created_by_id"`
	UpdatedByID   string      `db:"updated_by_id"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (repo organizationRepository) boil(org organization.Organization) map[string]interface{} {
	return map[string]interface{}{
		"id":             org.ID,
		"title":          org.Title,
		"code":           org.Code,
		"org_type":       org.OrgType,
		"affiliation_id": null.NewString(org.AffiliationID, org.AffiliationID != ""),
		"district_id":    null.NewString(org.DistrictID, org.DistrictID != ""),
		"created_by_id":  org.CreatedByID,
		"updated_by_id":  org.UpdatedByID,
		"created_at":     org.CreatedAt.UTC(),
		"updated_at":     org.UpdatedAt.UTC(),
	}
}

func (repo organizationRepository) unboil(row organizationRow) organization.Organization {
	return organization.Organization{
		ID:            row.ID,
		Title:         row.Title,
		Code:          row.Code,
		OrgType:       row.OrgType,
		AffiliationID: row.AffiliationID.String,
		DistrictID:    row.DistrictID.String,
		CreatedByID:   row.CreatedByID,
		UpdatedByID:   row.UpdatedByID,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// Institutions

var institutionListing = listing{
	search: []string{"o.title", "o.code", "a.title", "d.name", "z.name"},
	sortFields: map[string]string{
		"title":       "o.title",
		"code":        "o.code",
		"org_type":    "o.org_type",
		"affiliation": "a.title",
		"district":    "d.name",
		"zone":        "z.name",
		"user_count":  "user_count",
		"created_at":  "o.created_at",
		"updated_at":  "o.updated_at",
	},
	defaultOrder: []string{"o.title ASC", "o.id ASC"},
}

func institutionsQuery(extraCols ...string) sq.SelectBuilder {
	cols := append([]string{
		"o.id", "o.title", "o.code", "o.org_type",
		"a.title AS affiliation", "d.name AS district", "z.name AS zone",
		"(SELECT COUNT(*) FROM user_organization_link l WHERE l.org_id = o.id) AS user_count",
	}, extraCols...)
	return builder.Select(cols...).
		From("organization o").
		LeftJoin("org_affiliation a ON a.id = o.affiliation_id").
		LeftJoin("district d ON d.id = o.district_id").
		LeftJoin("zone z ON z.id = d.zone_id")
}

func (repo organizationRepository) QueryInstitutions(ctx context.Context, filter organization.InstitutionFilter, pq *core.PageQuery) ([]organization.Institution, core.Pagination, error) {
	qb := institutionsQuery()
	if filter.OrgType != "" {
		qb = qb.Where(sq.Eq{"o.org_type": filter.OrgType})
	}
	if filter.DistrictID != "" {
		qb = qb.Where(sq.Eq{"o.district_id": filter.DistrictID})
	}

	insts := make([]organization.Institution, 0)
	pagination, err := paginate(ctx, repo.exec, &insts, qb, pq, institutionListing)
	if err != nil {
		return nil, core.Pagination{}, errors.Wrap(err, "querying institutions")
	}
	return insts, pagination, nil
}

func (repo organizationRepository) GetInstitutionInfo(ctx context.Context, code string) (organization.InstitutionInfo, error) {
	qb := institutionsQuery("o.affiliation_id", "o.district_id", "d.zone_id", "o.created_at", "o.updated_at").
		Where(sq.Eq{"o.code": code})

	var info organization.InstitutionInfo
	if err := selectOne(ctx, repo.exec, &info, qb); err != nil {
		return organization.InstitutionInfo{}, trapNoRowsErr(err, organization.ErrNotFound, "getting institution")
	}
	return info, nil
}

func (repo organizationRepository) QueryInstitutionNames(ctx context.Context, orgType string) ([]organization.InstitutionName, error) {
	qb := builder.Select("id", "title").
		From("organization").
		Where(sq.Eq{"org_type": orgType}).
		OrderBy("title ASC", "id ASC")

	names := make([]organization.InstitutionName, 0)
	if err := selectAll(ctx, repo.exec, &names, qb); err != nil {
		return nil, errors.Wrap(err, "querying institution names")
	}
	return names, nil
}

func (repo organizationRepository) GetOrganization(ctx context.Context, code string) (organization.Organization, error) {
	qb := builder.Select(
		"id", "title", "code", "org_type", "affiliation_id", "district_id",
		"created_by_id", "updated_by_id", "created_at", "updated_at",
	).From("organization").Where(sq.Eq{"code": code})

	var row organizationRow
	if err := selectOne(ctx, repo.exec, &row, qb); err != nil {
		return organization.Organization{}, trapNoRowsErr(err, organization.ErrNotFound, "getting organisation")
	}
	return repo.unboil(row), nil
}

func (repo organizationRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedIDs ...string) error {
	qb := excludeIDs(builder.Select("id").From("organization").Where(sq.Eq{"code": code}), "id", excludedIDs)
	found, err := exists(ctx, repo.exec, qb)
	if err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if found {
		return organization.ErrCodeExists
	}
	return nil
}

func (repo organizationRepository) DistrictExists(ctx context.Context, id string) (bool, error) {
	found, err := exists(ctx, repo.exec, builder.Select("id").From("district").Where(sq.Eq{"id": id}))
	if err != nil {
		return false, errors.Wrap(err, "checking district")
	}
	return found, nil
}

func (repo organizationRepository) CreateOrganization(ctx context.Context, org organization.Organization) error {
	if _, err := execute(ctx, repo.exec, builder.Insert("organization").SetMap(repo.boil(org))); err != nil {
		return errors.Wrap(err, "inserting organisation")
	}
	return nil
}

func (repo organizationRepository) UpdateOrganization(ctx context.Context, org organization.Organization) error {
	cols := repo.boil(org)
	delete(cols, "id")
	delete(cols, "created_by_id")
	delete(cols, "created_at")

	qb := builder.Update("organization").SetMap(cols).Where(sq.Eq{"id": org.ID})
	if _, err := execute(ctx, repo.exec, qb); err != nil {
		return errors.Wrap(err, "updating organisation")
	}
	return nil
}

func (repo organizationRepository) DeleteOrganization(ctx context.Context, id string) error {
	if _, err := execute(ctx, repo.exec, builder.Delete("organization").Where(sq.Eq{"id": id})); err != nil {
		return errors.Wrap(err, "deleting organisation")
	}
	return nil
}

// Affiliations & Departments share the same shape: a title plus audit fields.

var titledListing = listing{
	search: []string{"t.title", "cu.full_name", "uu.full_name"},
	sortFields: map[string]string{
		"title":      "t.title",
		"created_by": "cu.full_name",
		"updated_by": "uu.full_name",
		"created_at": "t.created_at",
		"updated_at": "t.updated_at",
	},
	defaultOrder: []string{"t.title ASC", "t.id ASC"},
}

func titledQuery(table string) sq.SelectBuilder {
	return builder.Select(
		"t.id", "t.title", "t.created_by_id", "t.updated_by_id",
		"cu.full_name AS created_by", "uu.full_name AS updated_by",
		"t.created_at", "t.updated_at",
	).
		From(table + " t").
		Join("users cu ON cu.id = t.created_by_id").
		Join("users uu ON uu.id = t.updated_by_id")
}

func (repo organizationRepository) checkTitleUniqueness(ctx context.Context, table, title string, excludedIDs []string) error {
	qb := builder.Select("id").From(table).Where("LOWER(title) = ?", core.CleanString(title, true /* lower */))
	found, err := exists(ctx, repo.exec, excludeIDs(qb, "id", excludedIDs))
	if err != nil {
		return errors.Wrapf(err, "checking %s title uniqueness", table)
	}
	if found {
		return organization.ErrTitleExists
	}
	return nil
}

func (repo organizationRepository) insertTitled(ctx context.Context, table, id, title, userID string, createdAt, updatedAt time.Time) error {
	_, err := execute(ctx, repo.exec, builder.Insert(table).SetMap(map[string]interface{}{
		"id":            id,
		"title":         title,
		"created_by_id": userID,
		"updated_by_id": userID,
		"created_at":    createdAt.UTC(),
		"updated_at":    updatedAt.UTC(),
	}))
	return errors.Wrapf(err, "inserting %s", table)
}

// updateTitled only changes the title and the updated_* fields.
func (repo organizationRepository) updateTitled(ctx context.Context, table, id, title, userID string, updatedAt time.Time) error {
	qb := builder.Update(table).SetMap(map[string]interface{}{
		"title":         title,
		"updated_by_id": userID,
		"updated_at":    updatedAt.UTC(),
	}).Where(sq.Eq{"id": id})
	_, err := execute(ctx, repo.exec, qb)
	return errors.Wrapf(err, "updating %s", table)
}

func (repo organizationRepository) deleteByID(ctx context.Context, table, id string) error {
	_, err := execute(ctx, repo.exec, builder.Delete(table).Where(sq.Eq{"id": id}))
	return errors.Wrapf(err, "deleting %s", table)
}

func (repo organizationRepository) QueryAffiliations(ctx context.Context, pq *core.PageQuery) ([]organization.Affiliation, core.Pagination, error) {
	affs := make([]organization.Affiliation, 0)
	pagination, err := paginate(ctx, repo.exec, &affs, titledQuery("org_affiliation"), pq, titledListing)
	if err != nil {
		return nil, core.Pagination{}, errors.Wrap(err, "querying affiliations")
	}
	return affs, pagination, nil
}

func (repo organizationRepository) GetAffiliation(ctx context.Context, id string) (organization.Affiliation, error) {
	var aff organization.Affiliation
	if err := selectOne(ctx, repo.exec, &aff, titledQuery("org_affiliation").Where(sq.Eq{"t.id": id})); err != nil {
		return organization.Affiliation{}, trapNoRowsErr(err, organization.ErrAffiliationNotFound, "getting affiliation")
	}
	return aff, nil
}

func (repo organizationRepository) CheckAffiliationTitleUniqueness(ctx context.Context, title string, excludedIDs ...string) error {
	return repo.checkTitleUniqueness(ctx, "org_affiliation", title, excludedIDs)
}

func (repo organizationRepository) CreateAffiliation(ctx context.Context, aff organization.Affiliation) error {
	return repo.insertTitled(ctx, "org_affiliation", aff.ID, aff.Title, aff.CreatedByID, aff.CreatedAt, aff.UpdatedAt)
}

func (repo organizationRepository) UpdateAffiliation(ctx context.Context, aff organization.Affiliation) error {
	return repo.updateTitled(ctx, "org_affiliation", aff.ID, aff.Title, aff.UpdatedByID, aff.UpdatedAt)
}

func (repo organizationRepository) DeleteAffiliation(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "org_affiliation", id)
}

func (repo organizationRepository) QueryDepartments(ctx context.Context, pq *core.PageQuery) ([]organization.Department, core.Pagination, error) {
	depts := make([]organization.Department, 0)
	pagination, err := paginate(ctx, repo.exec, &depts, titledQuery("department"), pq, titledListing)
	if err != nil {
		return nil, core.Pagination{}, errors.Wrap(err, "querying departments")
	}
	return depts, pagination, nil
}

func (repo organizationRepository) GetDepartment(ctx context.Context, id string) (organization.Department, error) {
	var dept organization.Department
	if err := selectOne(ctx, repo.exec, &dept, titledQuery("department").Where(sq.Eq{"t.id": id})); err != nil {
		return organization.Department{}, trapNoRowsErr(err, organization.ErrDepartmentNotFound, "getting department")
	}
	return dept, nil
}

func (repo organizationRepository) CheckDepartmentTitleUniqueness(ctx context.Context, title string, excludedIDs ...string) error {
	return repo.checkTitleUniqueness(ctx, "department", title, excludedIDs)
}

func (repo organizationRepository) CreateDepartment(ctx context.Context, dept organization.Department) error {
	return repo.insertTitled(ctx, "department", dept.ID, dept.Title, dept.CreatedByID, dept.CreatedAt, dept.UpdatedAt)
}

func (repo organizationRepository) UpdateDepartment(ctx context.Context, dept organization.Department) error {
	return repo.updateTitled(ctx, "department", dept.ID, dept.Title, dept.UpdatedByID, dept.UpdatedAt)
}

func (repo organizationRepository) DeleteDepartment(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "department", id)
}
