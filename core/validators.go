package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

// client-facing validation texts (the API speaks Spanish)
var (
	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "Este campo es obligatorio."

	// "contains" is only ever used as `contains=@` on email fields.
	containsTag  = "contains"
	containsText = "El correo no es válido."
)

// NewValidator instantiates the app validator with Spanish translations and
// JSON tag names for error keys.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	esLocale := es.New()
	uni := ut.New(esLocale, esLocale)
	translator, _ := uni.GetTranslator("es")

	_ = es_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, containsTag, containsText, true)

	return validate, translator
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
