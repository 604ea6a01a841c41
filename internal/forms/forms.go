// Package forms validates view input before it reaches a store.
package forms

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	msgName     = "Name must be at least 2 characters"
	msgEmail    = "Please enter a valid email address"
	msgPassword = "Password must be at least 6 characters"
	msgMismatch = "Passwords don't match"
	msgPhone    = "Phone is required"
)

type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type Register struct {
	Name            string `form:"name" validate:"required,min=2"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,min=6,eqfield=Password"`
}

// Contact backs both the create and edit forms.
type Contact struct {
	Name    string `form:"name" validate:"required,min=2"`
	Phone   string `form:"phone" validate:"required"`
	Email   string `form:"email" validate:"required,email"`
	Address string `form:"address"`
}

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var messages = map[string]map[string]string{
	"name":            {"": msgName},
	"email":           {"": msgEmail},
	"password":        {"": msgPassword},
	"confirmPassword": {"eqfield": msgMismatch, "": msgPassword},
	"phone":           {"": msgPhone},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks v against its struct tags after trimming surrounding
// whitespace from every string field. It returns nil when v is valid; only
// the first failure per field is reported.
func Validate(v any) FieldErrors {
	trim(v)
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe.Tag())
	}
	return out
}

func message(field, tag string) string {
	byTag, ok := messages[field]
	if !ok {
		return field + " is invalid"
	}
	if msg, ok := byTag[tag]; ok {
		return msg
	}
	return byTag[""]
}

func trim(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() && !strings.Contains(rv.Type().Field(i).Name, "Password") {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
