package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// clockTime is a zero-padded 24h HH:MM. Times are compared as strings, so
// "9:00" must not pass.
var clockTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// NewValidator returns a validator that reports fields by their JSON name
// and knows the hhmm tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return clockTime.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput turns validator failures into an *entities.ValidationError
// naming every offending field once.
func validateInput(v *validator.Validate, entity string, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	seen := make(map[string]bool, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if !seen[fe.Field()] {
			seen[fe.Field()] = true
			fields = append(fields, fe.Field())
		}
	}
	return &entities.ValidationError{Entity: entity, Fields: fields}
}

// applied shapes a service result: fn errors mean nothing happened, while
// persistence errors accompany a change that is already in memory.
func applied[T any](value *T, changed bool, err error) (*T, error) {
	if err != nil && !changed {
		return nil, err
	}
	return value, err
}
