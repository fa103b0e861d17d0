package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campusdash/core"
)

// Roles
const (
	RoleAdmin              = "Admins"
	RoleZonalCampusLead    = "Zonal Campus Lead"
	RoleDistrictCampusLead = "District Campus Lead"
	RoleCampusLead         = "Campus Lead"
	RoleStudent            = "Student"
)

var AllRoles = []string{RoleAdmin, RoleZonalCampusLead, RoleDistrictCampusLead, RoleCampusLead, RoleStudent}

type User struct {
	ID        string    `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Muid      string    `json:"muid" db:"muid"`
	Email     string    `json:"email" db:"email"`
	Mobile    string    `json:"mobile" db:"mobile"`
	Roles     []string  `json:"roles" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FullName string   `json:"full_name" validate:"required,notblank"`
	Muid     string   `json:"muid" validate:"required,notblank"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Mobile   string   `json:"mobile" validate:"omitempty,numeric,max=15"`
	Roles    []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Muid = core.CleanString(nu.Muid, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Mobile = core.CleanString(nu.Mobile)
	return validate.Struct(nu)
}

// GetFilter selects a single User; the first non-empty field wins.
type GetFilter struct {
	ID   string
	Muid string
}
