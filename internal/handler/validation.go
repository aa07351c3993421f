package handler

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	registerValidators()
}

// registerValidators installs custom binding rules on gin's validator engine.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Error messages report json field names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("phonedigits", phoneDigits); err != nil {
		panic(err)
	}
}

// phoneDigits accepts any string carrying at least 8 digits. Formatting is
// free-form; normalization happens at send time.
func phoneDigits(fl validator.FieldLevel) bool {
	count := 0
	for _, r := range fl.Field().String() {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count >= 8
}
