package utils

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"property-crm/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator with the CRM enum tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON name
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		enums := map[string][]string{
			"property_type":   models.PropertyTypes,
			"property_status": models.PropertyStatuses,
			"tenant_status":   models.TenantStatuses,
			"contact_type":    models.ContactTypes,
		}
		for tag, allowed := range enums {
			allowed := allowed
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return slices.Contains(allowed, fl.Field().String())
			})
		}

		validate = v
	})
	return validate
}

// ValidateStruct validates s and flattens failures into field -> message.
// It returns nil when s is valid.
func ValidateStruct(s interface{}) map[string]string {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_error": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = validationMessage(e)
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "url":
		return "Invalid URL format"
	case "max":
		return fmt.Sprintf("Value must be at most %s characters long", e.Param())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Value must be at least %s characters long", e.Param())
		}
		return fmt.Sprintf("Value must be at least %s", e.Param())
	case "gte":
		return fmt.Sprintf("Value must be greater than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Value must be one of: %s", e.Param())
	case "property_type":
		return "Must be one of: " + strings.Join(models.PropertyTypes, ", ")
	case "property_status":
		return "Must be one of: " + strings.Join(models.PropertyStatuses, ", ")
	case "tenant_status":
		return "Must be one of: " + strings.Join(models.TenantStatuses, ", ")
	case "contact_type":
		return "Must be one of: " + strings.Join(models.ContactTypes, ", ")
	default:
		return fmt.Sprintf("Failed on %s validation", e.Tag())
	}
}
