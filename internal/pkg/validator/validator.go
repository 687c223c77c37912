package validator

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

var (
	rePassword = regexp.MustCompile(`^.{8,72}$`)
	reMobile   = regexp.MustCompile(`^\+?[0-9]{4,15}$`)
)

// ErrTranslatorNotFound is returned when the English translator cannot be built.
var ErrTranslatorNotFound = errors.New("translator not found")

// Validator validates a struct.
type Validator interface {
	Validate(data any) error
}

// FieldErrors maps snake_case field names to readable messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation error"
	}

	keys := lo.Keys(fe)
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}

	return strings.Join(parts, "; ")
}

// MarshalJSON keeps the map shape when the error is logged as an attribute.
func (fe FieldErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string(fe))
}

// Values returns the underlying map.
func (fe FieldErrors) Values() map[string]string {
	return fe
}

// V10 implements Validator with go-playground/validator.
type V10 struct {
	validate   *validator.Validate
	translator ut.Translator
}

type rule struct {
	tag     string
	message string
	re      *regexp.Regexp
}

var rules = []rule{
	{tag: "password", message: "{0} must be 8-72 characters", re: rePassword},
	{tag: "mobile", message: "{0} must be 4-15 digits with an optional leading +", re: reMobile},
}

// NewV10 builds a V10 with English messages and the custom rules above.
func NewV10() (*V10, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	lang := en.New()
	trans, ok := ut.New(lang, lang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	for _, r := range rules {
		if err := register(validate, trans, r); err != nil {
			return nil, err
		}
	}

	return &V10{validate: validate, translator: trans}, nil
}

func register(validate *validator.Validate, trans ut.Translator, r rule) error {
	re := r.re
	err := validate.RegisterValidation(r.tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation(r.tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(r.tag, r.message, false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate returns FieldErrors when data breaks a rule.
func (v *V10) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[lo.SnakeCase(fe.Field())] = fe.Translate(v.translator)
	}

	return out
}
