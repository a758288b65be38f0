package subject

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/escolarapp/escolar/core"
)

var (
	horaTag   = "hora"
	horaText  = "La hora no tiene un formato válido (HH:MM:SS)."
	horaRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d$`)
)

// RegisterValidators registers the subject-specific validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(horaTag, horaValidation)
	core.RegisterCustomTranslation(validate, translator, horaTag, horaText)
}

// horaValidation accepts only canonical HH:MM:SS values; inputs the normalizer
// could not parse fail here.
func horaValidation(fl validator.FieldLevel) bool {
	return horaRegex.MatchString(fl.Field().String())
}
