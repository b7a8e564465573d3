package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator whose error field names are the JSON
// names ("estimatedTime", not "EstimatedTime"), so messages match the API.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
