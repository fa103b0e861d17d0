package organization

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campusdash/core"
)

var (
	orgTypeTag  = "orgtype"
	orgTypeText = "{0} must be one of College, Company or Community"
)

// InitValidators registers the organisation validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(orgTypeTag, func(fl validator.FieldLevel) bool {
		return IsType(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, orgTypeTag, orgTypeText)
}
