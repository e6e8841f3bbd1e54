package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"go-gin-blog/internal/core/apperr"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// validateStruct runs every rule and reports all failing fields together.
func validateStruct(in any) error {
	err := validatorInstance().Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Internal("validate input", err)
	}
	fields := make([]apperr.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apperr.Validation(fields...)
}

// fieldPath drops the struct name: "CreatePostInput.tags[1]" becomes "tags[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	if strings.HasPrefix(field, "tags[") {
		return "Tag cannot be empty"
	}
	label := strings.ToUpper(field[:1]) + field[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	case "email":
		return label + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return label + " must be a valid URL"
	}
	return label + " is invalid"
}

// merge folds extra field errors into a validation error from validateStruct.
func merge(err error, extra ...apperr.FieldError) error {
	if len(extra) == 0 {
		return err
	}
	if err == nil {
		return apperr.Validation(extra...)
	}
	ae := apperr.As(err)
	if ae.Kind != apperr.KindValidation {
		return err
	}
	return apperr.Validation(append(ae.Fields, extra...)...)
}
