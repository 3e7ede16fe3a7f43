package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/user"
)

var (
	requiredText = "this field is required"

	dateTag  = "datetime"
	dateText = "must be a date formatted as YYYY-MM-DD"

	eventTimesTag  = "gtfield"
	eventTimesText = "must be after the start"
)

// InitValidators registers the catalog translations on top of core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterCustomTranslation(validate, translator, "required_without", requiredText, true)
	core.RegisterCustomTranslation(validate, translator, "required_unless", requiredText, true)
	core.RegisterCustomTranslation(validate, translator, dateTag, dateText, true)
	core.RegisterCustomTranslation(validate, translator, eventTimesTag, eventTimesText, true)
}

// NewValidator returns a validator knowing every core, user and catalog tag.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}
