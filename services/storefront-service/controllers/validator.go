package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the storefront's custom binding tags to gin's
// validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("phone", validatePhone)
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// validatePhone accepts local or international numbers written with the
// usual separators, e.g. "07 01 02 03 04" or "+225 (07) 01-02-03-04".
func validatePhone(fl validator.FieldLevel) bool {
	return IsPhone(fl.Field().String())
}

func IsPhone(s string) bool {
	s = strings.TrimSpace(s)
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 8 && digits <= 15
}

var tagMessages = map[string]string{
	"required": "champ obligatoire",
	"email":    "adresse e-mail invalide",
	"phone":    "numéro de téléphone invalide",
	"numeric":  "doit contenir uniquement des chiffres",
	"datetime": "format attendu AAAA-MM-JJ",
	"oneof":    "valeur non autorisée",
}

// validationDetails turns binding errors into field → French message pairs.
// Errors that are not validation failures (bad JSON) come back as one entry.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "JSON invalide"}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out[field] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("minimum %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum %s", fe.Param())
	case "len":
		return fmt.Sprintf("doit contenir %s caractères", fe.Param())
	case "gt":
		return fmt.Sprintf("doit être supérieur à %s", fe.Param())
	case "gte":
		return fmt.Sprintf("doit être supérieur ou égal à %s", fe.Param())
	case "lte":
		return fmt.Sprintf("doit être inférieur ou égal à %s", fe.Param())
	}
	return "valeur invalide"
}
