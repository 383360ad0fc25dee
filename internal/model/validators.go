package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	notBlankTag  = "notblank"
	notBlankText = "{0} cannot be empty"

	sourceLinkTag  = "source_link"
	sourceLinkText = "source link cannot be empty for non-custom sources"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(notBlankTag, notBlankText)

	Validate.RegisterStructValidation(eventStructValidation, NewEvent{})
	RegisterCustomTranslation(sourceLinkTag, sourceLinkText)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// notBlankValidation rejects strings that are empty after trimming.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// eventStructValidation requires a source link for anything not entered by hand.
func eventStructValidation(sl validator.StructLevel) {
	ev := sl.Current().Interface().(NewEvent)
	if ev.Source != SourceCustom && strings.TrimSpace(ev.SourceLink) == "" {
		sl.ReportError(ev.SourceLink, "source_link", "SourceLink", sourceLinkTag, "")
	}
}

// cleanString trims surrounding whitespace and collapses inner runs of it.
func cleanString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
