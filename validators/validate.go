// Package validators holds helpers shared by the per-route validator handlers.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"coursehub/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Struct validates s by its `validate` tags and returns a message per
// failing field, keyed by the field's json name.
func Struct(s interface{}) map[string]string {
	errors := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return errors
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["_"] = "Invalid input!"
		return errors
	}
	for _, fe := range verrs {
		if _, exists := errors[fe.Field()]; !exists {
			errors[fe.Field()] = message(fe)
		}
	}
	return errors
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required!", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address!", field)
	case "max":
		if isString {
			return fmt.Sprintf("The %s may not be greater than %s characters!", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s!", field, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("The %s must be at least %s characters!", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s!", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s!", field, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s may not be greater than %s!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid!", field)
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL!", field)
	default:
		return fmt.Sprintf("The %s is invalid!", field)
	}
}

// ParseID reads a positive integer route parameter.
func ParseID(c *fiber.Ctx, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParsePage reads page and limit from the query string.
func ParsePage(c *fiber.Ctx) repositories.Page {
	return repositories.Page{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", repositories.DefaultPageSize),
	}
}

// FormBool interprets checkbox style values.
func FormBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// OptionalBool parses a tri-state query filter; empty means unset.
func OptionalBool(s string) *bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	b := FormBool(s)
	return &b
}
