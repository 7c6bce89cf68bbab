// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata so repeated validation of canonical events stays cheap. Field
// names in messages come from the json tag (falling back to the koanf tag)
// so browser-facing errors read "appId is required" rather than "AppID".
//
//	type CanonicalEvent struct {
//	    AppID     string `json:"appId" validate:"required,publicid"`
//	    Currency  string `json:"currency" validate:"omitempty,iso4217"`
//	}
//
//	if verr := validation.ValidateStruct(&ev); verr != nil {
//	    return fmt.Errorf("%w: %s", ErrMissingField, verr.Error())
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var publicIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidationError is one failed rule on one field.
type ValidationError struct {
	field   string
	tag     string
	message string
}

// Field returns the field name that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects every failed rule of one Validate call.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error implements the error interface, returning a combined error message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i := range ve.errors {
		messages[i] = ve.errors[i].message
	}
	return strings.Join(messages, "; ")
}

// HasTag reports whether any field failed the given tag.
func (ve *RequestValidationError) HasTag(tag string) bool {
	for _, err := range ve.errors {
		if err.tag == tag {
			return true
		}
	}
	return false
}

// GetValidator returns the shared validator with the publicid rule
// registered. Currency codes use the built-in iso4217 tag.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(tagName)

		// Registration only fails on an empty tag or nil func.
		_ = validate.RegisterValidation("publicid", func(fl validator.FieldLevel) bool {
			return publicIDPattern.MatchString(fl.Field().String())
		})
	})

	return validate
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "koanf"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ValidateStruct returns nil when s passes every rule. Callers must compare
// the pointer, not an error interface, against nil.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: s was not a struct.
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	out := make([]ValidationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = ValidationError{field: fe.Field(), tag: fe.Tag(), message: translateError(fe)}
	}
	return &RequestValidationError{errors: out}
}

// errorMessageTemplates maps validation tags to message templates (field only).
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"publicid": "%s must contain only letters, digits, '_' or '-'",
	"iso4217":  "%s must be an ISO 4217 currency code",
	"url":      "%s must be a valid URL",
	"uuid":     "%s must be a valid UUID",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
