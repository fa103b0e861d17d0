package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/trezcool/campusdash/core"
)

var (
	// errors
	ErrNotFound            = errors.New("organisation not found")
	ErrAffiliationNotFound = errors.New("affiliation not found")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrDistrictNotFound    = errors.New("district not found")
	ErrCodeExists          = errors.New("an organisation with this code already exists")
	ErrTitleExists         = errors.New("this title is already taken")
)

type (
	Repository interface {
		// institutions
		QueryInstitutions(ctx context.Context, filter InstitutionFilter, pq *core.PageQuery) ([]Institution, core.Pagination, error)
		GetInstitutionInfo(ctx context.Context, code string) (InstitutionInfo, error)
		QueryInstitutionNames(ctx context.Context, orgType string) ([]InstitutionName, error)
		GetOrganization(ctx context.Context, code string) (Organization, error)
		CheckCodeUniqueness(ctx context.Context, code string, excludedIDs ...string) error
		DistrictExists(ctx context.Context, id string) (bool, error)
		CreateOrganization(ctx context.Context, org Organization) error
		UpdateOrganization(ctx context.Context, org Organization) error
		DeleteOrganization(ctx context.Context, id string) error

		// affiliations
		QueryAffiliations(ctx context.Context, pq *core.PageQuery) ([]Affiliation, core.Pagination, error)
		GetAffiliation(ctx context.Context, id string) (Affiliation, error)
		CheckAffiliationTitleUniqueness(ctx context.Context, title string, excludedIDs ...string) error
		CreateAffiliation(ctx context.Context, aff Affiliation) error
		UpdateAffiliation(ctx context.Context, aff Affiliation) error
		DeleteAffiliation(ctx context.Context, id string) error

		// departments
		QueryDepartments(ctx context.Context, pq *core.PageQuery) ([]Department, core.Pagination, error)
		GetDepartment(ctx context.Context, id string) (Department, error)
		CheckDepartmentTitleUniqueness(ctx context.Context, title string, excludedIDs ...string) error
		CreateDepartment(ctx context.Context, dept Department) error
		UpdateDepartment(ctx context.Context, dept Department) error
		DeleteDepartment(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// checkReferences validates the fields of an institution that depend on stored data.
// Empty arguments are skipped.
func (svc *Service) checkReferences(ctx context.Context, code, orgID, affiliationID, districtID string) error {
	if code != "" {
		var excluded []string
		if orgID != "" {
			excluded = append(excluded, orgID)
		}
		if err := svc.repo.CheckCodeUniqueness(ctx, code, excluded...); err != nil {
			if errors.Is(err, ErrCodeExists) {
				return core.NewFieldError("code", err.Error())
			}
			return err
		}
	}
	if affiliationID != "" {
		if _, err := svc.repo.GetAffiliation(ctx, affiliationID); err != nil {
			if errors.Is(err, ErrAffiliationNotFound) {
				return core.NewFieldError("affiliation", err.Error())
			}
			return err
		}
	}
	if districtID != "" {
		ok, err := svc.repo.DistrictExists(ctx, districtID)
		if err != nil {
			return err
		}
		if !ok {
			return core.NewFieldError("district", ErrDistrictNotFound.Error())
		}
	}
	return nil
}

// Institutions

func (svc *Service) QueryInstitutions(ctx context.Context, filter InstitutionFilter, pq *core.PageQuery) ([]Institution, core.Pagination, error) {
	return svc.repo.QueryInstitutions(ctx, filter, pq)
}

// ExportInstitutions returns every institution matching the filter, search and ordering of `pq`.
func (svc *Service) ExportInstitutions(ctx context.Context, filter InstitutionFilter, pq core.PageQuery) ([]Institution, error) {
	pq.PerPage = core.NoPaging
	insts, _, err := svc.repo.QueryInstitutions(ctx, filter, &pq)
	return insts, err
}

// AllInstitutions returns every institution grouped by type.
func (svc *Service) AllInstitutions(ctx context.Context) (Institutions, error) {
	insts, err := svc.ExportInstitutions(ctx, InstitutionFilter{}, core.PageQuery{})
	if err != nil {
		return Institutions{}, err
	}
	all := Institutions{
		Colleges:    []Institution{},
		Companies:   []Institution{},
		Communities: []Institution{},
	}
	for _, inst := range insts {
		switch inst.OrgType {
		case TypeCollege:
			all.Colleges = append(all.Colleges, inst)
		case TypeCompany:
			all.Companies = append(all.Companies, inst)
		case TypeCommunity:
			all.Communities = append(all.Communities, inst)
		}
	}
	return all, nil
}

func (svc *Service) GetInstitutionInfo(ctx context.Context, code string) (InstitutionInfo, error) {
	return svc.repo.GetInstitutionInfo(ctx, core.CleanString(code))
}

// InstitutionNames lists the id and title of every institution of type `orgType`, ordered by title.
func (svc *Service) InstitutionNames(ctx context.Context, orgType string) ([]InstitutionName, error) {
	if !IsType(orgType) {
		return nil, core.NewFieldError("org_type", "invalid organisation type")
	}
	return svc.repo.QueryInstitutionNames(ctx, orgType)
}

func (svc *Service) GetOrganization(ctx context.Context, code string) (Organization, error) {
	return svc.repo.GetOrganization(ctx, core.CleanString(code))
}

// CreateInstitution stores a validated NewInstitution on behalf of user `userID`.
func (svc *Service) CreateInstitution(ctx context.Context, userID string, ni NewInstitution) (InstitutionInfo, error) {
	now := core.Now()
	org := Organization{
		ID:            uuid.New().String(),
		Title:         ni.Title,
		Code:          ni.Code,
		OrgType:       ni.OrgType,
		AffiliationID: ni.AffiliationID,
		DistrictID:    ni.DistrictID,
		CreatedByID:   userID,
		UpdatedByID:   userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := svc.repo.CreateOrganization(ctx, org); err != nil {
		return InstitutionInfo{}, err
	}
	return svc.repo.GetInstitutionInfo(ctx, org.Code)
}

// UpdateInstitution stores `org`, already merged by UpdateInstitution.Validate, on behalf of user `userID`.
func (svc *Service) UpdateInstitution(ctx context.Context, userID string, org Organization) (InstitutionInfo, error) {
	org.UpdatedByID = userID
	org.UpdatedAt = core.Now()
	if err := svc.repo.UpdateOrganization(ctx, org); err != nil {
		return InstitutionInfo{}, err
	}
	return svc.repo.GetInstitutionInfo(ctx, org.Code)
}

func (svc *Service) DeleteInstitution(ctx context.Context, code string) error {
	org, err := svc.GetOrganization(ctx, code)
	if err != nil {
		return err
	}
	return svc.repo.DeleteOrganization(ctx, org.ID)
}

// Affiliations

func (svc *Service) QueryAffiliations(ctx context.Context, pq *core.PageQuery) ([]Affiliation, core.Pagination, error) {
	return svc.repo.QueryAffiliations(ctx, pq)
}

func (svc *Service) GetAffiliation(ctx context.Context, id string) (Affiliation, error) {
	return svc.repo.GetAffiliation(ctx, id)
}

func (svc *Service) CreateAffiliation(ctx context.Context, userID string, in TitleInput) (Affiliation, error) {
	if err := svc.checkTitle(svc.repo.CheckAffiliationTitleUniqueness(ctx, in.Title)); err != nil {
		return Affiliation{}, err
	}
	now := core.Now()
	aff := Affiliation{
		ID:          uuid.New().String(),
		Title:       in.Title,
		CreatedByID: userID,
		UpdatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.repo.CreateAffiliation(ctx, aff); err != nil {
		return Affiliation{}, err
	}
	return svc.repo.GetAffiliation(ctx, aff.ID)
}

// UpdateAffiliation renames `orig`; only the title and the updated_* fields change.
func (svc *Service) UpdateAffiliation(ctx context.Context, userID string, orig Affiliation, in TitleInput) (Affiliation, error) {
	if err := svc.checkTitle(svc.repo.CheckAffiliationTitleUniqueness(ctx, in.Title, orig.ID)); err != nil {
		return Affiliation{}, err
	}
	orig.Title = in.Title
	orig.UpdatedByID = userID
	orig.UpdatedAt = core.Now()
	if err := svc.repo.UpdateAffiliation(ctx, orig); err != nil {
		return Affiliation{}, err
	}
	return svc.repo.GetAffiliation(ctx, orig.ID)
}

func (svc *Service) DeleteAffiliation(ctx context.Context, id string) error {
	if _, err := svc.repo.GetAffiliation(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteAffiliation(ctx, id)
}

// Departments

func (svc *Service) QueryDepartments(ctx context.Context, pq *core.PageQuery) ([]Department, core.Pagination, error) {
	return svc.repo.QueryDepartments(ctx, pq)
}

func (svc *Service) GetDepartment(ctx context.Context, id string) (Department, error) {
	return svc.repo.GetDepartment(ctx, id)
}

func (svc *Service) CreateDepartment(ctx context.Context, userID string, in TitleInput) (Department, error) {
	if err := svc.checkTitle(svc.repo.CheckDepartmentTitleUniqueness(ctx, in.Title)); err != nil {
		return Department{}, err
	}
	now := core.Now()
	dept := Department{
		ID:          uuid.New().String(),
		Title:       in.Title,
		CreatedByID: userID,
		UpdatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.repo.CreateDepartment(ctx, dept); err != nil {
		return Department{}, err
	}
	return svc.repo.GetDepartment(ctx, dept.ID)
}

func (svc *Service) UpdateDepartment(ctx context.Context, userID string, orig Department, in TitleInput) (Department, error) {
	if err := svc.checkTitle(svc.repo.CheckDepartmentTitleUniqueness(ctx, in.Title, orig.ID)); err != nil {
		return Department{}, err
	}
	orig.Title = in.Title
	orig.UpdatedByID = userID
	orig.UpdatedAt = core.Now()
	if err := svc.repo.UpdateDepartment(ctx, orig); err != nil {
		return Department{}, err
	}
	return svc.repo.GetDepartment(ctx, orig.ID)
}

func (svc *Service) DeleteDepartment(ctx context.Context, id string) error {
	if _, err := svc.repo.GetDepartment(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteDepartment(ctx, id)
}

func (svc *Service) checkTitle(err error) error {
	if errors.Is(err, ErrTitleExists) {
		return core.NewFieldError("title", err.Error())
	}
	return err
}
