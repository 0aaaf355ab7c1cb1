package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/heladeria/order-form-api/models"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidators(v)
	}
}

func registerValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	// Registration only fails on an empty tag name
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("maxflavors", maxFlavors)
}

// jsonFieldName reports validation errors under the JSON field name
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// maxFlavors accepts a comma-joined list of at most N distinct labels
func maxFlavors(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	labels := models.SplitFlavors(fl.Field().String())
	if len(labels) > limit {
		return false
	}

	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, dup := seen[label]; dup {
			return false
		}
		seen[label] = struct{}{}
	}
	return true
}

// validationDetails turns binding errors into a field -> message map
func validationDetails(err error) interface{} {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "maxflavors":
		return fmt.Sprintf("must list at most %s distinct flavors", fe.Param())
	case "excludesall":
		return "must not contain a comma"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
