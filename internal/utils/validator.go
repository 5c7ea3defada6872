package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var nonBlank = regexp.MustCompile(`\S`)

func InitValidator() {
	if Validate != nil {
		return
	}
	Validate = validator.New()

	// string not empty and not only whitespace
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})
}
