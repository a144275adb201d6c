package config

import (
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// squashed names the segment of a mapstructure ",squash" field, which
// is dropped from reported field names.
const squashed = "_"

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("config: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, opts, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" && slices.Contains(strings.Split(opts, ","), "squash") {
			return squashed
		}
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})
}

// Validate checks a configuration value (Config or File) against its tags.
func Validate(val any) error {
	if err := validate.Struct(val); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			fields = append(fields, FieldError{
				Field: fieldName(verror.Namespace()),
				Err:   errForTag(verror.Tag(), verror),
			})
		}
		return fields
	}

	return nil
}

// FieldError is a single invalid configuration key.
type FieldError struct {
	Field string
	Err   string
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// Fields maps the failing keys to their messages.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, f := range fe {
		m[f.Field] = f.Err
	}
	return m
}

// fieldName drops the root struct and squashed segments from ns.
func fieldName(ns string) string {
	segs := strings.Split(ns, ".")
	if len(segs) > 1 {
		segs = segs[1:]
	}

	return strings.Join(slices.DeleteFunc(segs, func(s string) bool { return s == squashed }), ".")
}

func errForTag(tag string, verror validator.FieldError) string {
	switch tag {
	case "required":
		return "is required"
	default:
		return verror.Translate(translator)
	}
}
