package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/izposoja/internal/model"
)

// phonePattern matches Indonesian mobile and landline numbers.
var phonePattern = regexp.MustCompile(`^(\+62|62|0)[0-9]{8,13}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("idphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("costumesize", func(fl validator.FieldLevel) bool {
		return model.ValidSize(fl.Field().String())
	})
	return v
}

// decodeValid decodes the body into target and validates it, writing a 400
// response and returning false on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(target); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "idphone":
			msgs = append(msgs, fe.Field()+" must be an Indonesian phone number")
		case "email":
			msgs = append(msgs, fe.Field()+" must be an email address")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must be a date (YYYY-MM-DD)")
		case "costumesize":
			msgs = append(msgs, fe.Field()+" must be one of: S M L XL ALL_SIZE")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}
