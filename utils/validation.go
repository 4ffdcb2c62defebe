package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// messages override the stock English translations. {0} is the field, {1} the rule parameter.
var messages = map[string]string{
	"required": "The {0} field is required.",
	"email":    "The {0} field must be a valid email address.",
	"number":   "The {0} field must be an integer.",
	"oneof":    "The selected {0} is invalid.",
	"min":      "The {0} field must be at least {1} characters.",
	"max":      "The {0} field must not be greater than {1} characters.",
	"datetime": "The {0} field must be a valid date.",
	"url":      "The {0} field must be a valid URL.",
}

func init() {
	locale := en.New()
	translator, _ = ut.New(locale, locale).GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report form/json names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			if name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	for tag, text := range messages {
		registerTranslation(tag, text)
	}
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, HumanizeField(fe.Field()), fe.Param())
			return s
		},
	)
}

// ValidateStruct validates s and returns one message per failing field, or nil.
// overrides maps "field.tag" to a replacement message.
func ValidateStruct(s interface{}, overrides map[string]string) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, exists := out[field]; exists {
			continue
		}
		if msg, ok := overrides[field+"."+fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		out[field] = fe.Translate(translator)
	}
	return out
}

// HumanizeField turns teacher_category_id into "teacher category id".
func HumanizeField(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
