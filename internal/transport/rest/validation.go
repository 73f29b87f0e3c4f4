package rest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// bodyValidator validates request payloads and renders violations as client messages.
type bodyValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newBodyValidator() (*bodyValidator, error) {
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	// report the JSON name of a field instead of the Go one
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.RegisterTranslation("required", trans,
		func(ut ut.Translator) error {
			return ut.Add("required", "{0} must not be empty", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, err := ut.T("required", fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register validation messages: %w", err)
	}

	return &bodyValidator{validate: validate, trans: trans}, nil
}

// Struct validates v and returns one message per violated field, in field order.
// A nil slice means v is valid; a non-nil error means v could not be validated at all.
func (b *bodyValidator) Struct(v any) ([]string, error) {
	err := b.validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fieldErr.Translate(b.trans))
	}
	return messages, nil
}
