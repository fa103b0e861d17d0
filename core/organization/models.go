package organization

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campusdash/core"
)

// Organisation types
const (
	TypeCollege   = "College"
	TypeCompany   = "Company"
	TypeCommunity = "Community"
)

var Types = []string{TypeCollege, TypeCompany, TypeCommunity}

// IsType reports whether t is a known organisation type.
func IsType(t string) bool {
	for _, typ := range Types {
		if typ == t {
			return true
		}
	}
	return false
}

// Organization is the persisted organisation record.
type Organization struct {
	ID            string
	Title         string
	Code          string
	OrgType       string
	AffiliationID string // optional
	DistrictID    string // optional
	CreatedByID   string
	UpdatedByID   string
	CreatedAt     time.Time // UTC
	UpdatedAt     time.Time // UTC
}

// Institution is an organisation as listed on the dashboard.
type Institution struct {
	ID          string  `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Code        string  `json:"code" db:"code"`
	OrgType     string  `json:"org_type" db:"org_type"`
	Affiliation *string `json:"affiliation" db:"affiliation"`
	District    *string `json:"district" db:"district"`
	Zone        *string `json:"zone" db:"zone"`
	UserCount   int     `json:"user_count" db:"user_count"`
}

// CSVHeader & CSVRecord are used for the institutions CSV export.
func (Institution) CSVHeader() []string {
	return []string{"id", "title", "code", "org_type", "affiliation", "district", "zone", "user_count"}
}

func (inst Institution) CSVRecord() []string {
	return []string{
		inst.ID, inst.Title, inst.Code, inst.OrgType,
		core.StringValue(inst.Affiliation), core.StringValue(inst.District), core.StringValue(inst.Zone),
		core.IntString(inst.UserCount),
	}
}

// InstitutionInfo is the detailed view of a single institution.
type InstitutionInfo struct {
	Institution
	AffiliationID *string   `json:"affiliation_id" db:"affiliation_id"`
	DistrictID    *string   `json:"district_id" db:"district_id"`
	ZoneID        *string   `json:"zone_id" db:"zone_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Institutions groups every institution by organisation type.
type Institutions struct {
	Colleges    []Institution `json:"colleges"`
	Companies   []Institution `json:"companies"`
	Communities []Institution `json:"communities"`
}

type InstitutionName struct {
	ID    string `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// InstitutionFilter narrows institution listings; empty fields are ignored.
type InstitutionFilter struct {
	OrgType    string
	DistrictID string
}

// NewInstitution contains information needed to create a new institution.
type NewInstitution struct {
	Title         string `json:"title" validate:"required,notblank,max=100"`
	Code          string `json:"code" validate:"required,code,max=12"`
	OrgType       string `json:"org_type" validate:"required,orgtype"`
	AffiliationID string `json:"affiliation"`
	DistrictID    string `json:"district"`
}

func (ni *NewInstitution) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ni.Title = core.CleanString(ni.Title)
	ni.Code = core.CleanString(ni.Code)
	ni.AffiliationID = core.CleanString(ni.AffiliationID)
	ni.DistrictID = core.CleanString(ni.DistrictID)
	if err := validate.Struct(ni); err != nil {
		return err
	}
	return svc.checkReferences(ctx, ni.Code, "", ni.AffiliationID, ni.DistrictID)
}

// UpdateInstitution defines what information may be provided to modify an existing institution.
// Blank fields keep their current value.
type UpdateInstitution struct {
	Title         string `json:"title" validate:"omitempty,notblank,max=100"`
	Code          string `json:"code" validate:"omitempty,code,max=12"`
	OrgType       string `json:"org_type" validate:"omitempty,orgtype"`
	AffiliationID string `json:"affiliation"`
	DistrictID    string `json:"district"`
}

// Validate cleans and validates the update, then merges it into `orig`.
func (ui *UpdateInstitution) Validate(ctx context.Context, validate *validator.Validate, svc *Service, orig *Organization) error {
	ui.Title = core.CleanString(ui.Title)
	ui.Code = core.CleanString(ui.Code)
	ui.AffiliationID = core.CleanString(ui.AffiliationID)
	ui.DistrictID = core.CleanString(ui.DistrictID)
	if err := validate.Struct(ui); err != nil {
		return err
	}

	code := ""
	if ui.Code != "" && ui.Code != orig.Code {
		code = ui.Code
	}
	if err := svc.checkReferences(ctx, code, orig.ID, ui.AffiliationID, ui.DistrictID); err != nil {
		return err
	}

	if ui.Title != "" {
		orig.Title = ui.Title
	}
	if ui.Code != "" {
		orig.Code = ui.Code
	}
	if ui.OrgType != "" {
		orig.OrgType = ui.OrgType
	}
	if ui.AffiliationID != "" {
		orig.AffiliationID = ui.AffiliationID
	}
	if ui.DistrictID != "" {
		orig.DistrictID = ui.DistrictID
	}
	return nil
}

// Affiliation is a named tag an organisation can be associated with.
type Affiliation struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	CreatedByID string    `json:"-" db:"created_by_id"`
	UpdatedByID string    `json:"-" db:"updated_by_id"`
	CreatedBy   string    `json:"created_by" db:"created_by"` // full name
	UpdatedBy   string    `json:"updated_by" db:"updated_by"` // full name
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Department is an academic department an organisation member belongs to.
type Department struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	CreatedByID string    `json:"-" db:"created_by_id"`
	UpdatedByID string    `json:"-" db:"updated_by_id"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	UpdatedBy   string    `json:"updated_by" db:"updated_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TitleInput is the payload for creating or renaming an affiliation or a department.
type TitleInput struct {
	Title string `json:"title" validate:"required,notblank,max=75"`
}

func (ti *TitleInput) Validate(validate *validator.Validate) error {
	ti.Title = core.CleanString(ti.Title)
	return validate.Struct(ti)
}
