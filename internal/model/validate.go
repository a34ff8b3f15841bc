package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationErrors maps a field name to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, v[f])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) add(field, msg string) ValidationErrors {
	if v == nil {
		v = ValidationErrors{}
	}
	if _, exists := v[field]; !exists {
		v[field] = msg
	}
	return v
}

// validateStruct runs struct tag validation and translates failures using
// messages keyed by "Field.tag".
func validateStruct(s any, messages map[string]string) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{"": err.Error()}
	}

	var out ValidationErrors
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out = out.add(fe.Field(), msg)
	}
	return out
}
