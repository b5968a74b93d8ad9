// Package validation checks tagged structs and reports every failing field
// at once as domain.FieldErrors keyed by the field's JSON name.
package validation

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
)

// Messages maps "<json field>.<tag>" to the text shown for that failure.
type Messages map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("web_url", isWebURL)
	return v
}

var webSchemes = map[string]bool{"http": true, "https": true, "ftp": true}

// isWebURL accepts absolute http, https and ftp URLs with a host.
func isWebURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return webSchemes[strings.ToLower(u.Scheme)] && u.Host != ""
}

// Struct validates s. It returns nil or a non-empty domain.FieldErrors.
func Struct(s any, msgs Messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewError(domain.KindValidation, "Invalid input", err)
	}

	fields := make(domain.FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := fields[field]; seen {
			continue
		}
		if msg, ok := msgs[field+"."+fe.Tag()]; ok {
			fields[field] = msg
		} else {
			fields[field] = field + " is invalid"
		}
	}
	return fields
}
