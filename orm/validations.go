package orm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shaurya/recordkit/framework/i18n"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const baseErrorKey = "base"

var validate = validator.New()

// ErrorCollector is implemented by models that keep their own errors.
// Every model embedding Record satisfies it through a pointer.
type ErrorCollector interface {
	AddError(attribute, message string)
	AddErrors(errs map[string][]string)
	ClearErrors()
}

// Validate runs struct validation on model. Messages are looked up as
// errors.validations.<tag> through tr. When model is an ErrorCollector its
// previous errors are replaced by the new ones.
func Validate(model any, tr Translator) map[string][]string {
	collector, _ := model.(ErrorCollector)
	if collector != nil {
		collector.ClearErrors()
	}

	err := validate.Struct(model)
	if err == nil {
		return nil
	}

	errs := make(map[string][]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[baseErrorKey] = []string{err.Error()}
		if collector != nil {
			collector.AddError(baseErrorKey, err.Error())
		}
		return errs
	}

	for _, fe := range verrs {
		field := fe.Field()
		tag := fe.Tag()

		// Key for i18n lookup: errors.validations.required
		key := fmt.Sprintf("errors.validations.%s", tag)
		msg := translate(tr, key, i18n.Vars{
			"field": fieldLabel(tr, field),
			"param": fe.Param(),
		})

		// Fallback if not translated
		if msg == key {
			msg = fmt.Sprintf("%s is invalid (%s)", field, tag)
		}

		errs[field] = append(errs[field], msg)
		if collector != nil {
			collector.AddError(field, msg)
		}
	}

	return errs
}

// HandleDBError maps a unique constraint violation to a message on the
// violated field. Anything else ends up under "base".
func HandleDBError(err error, tr Translator) map[string][]string {
	if err == nil {
		return nil
	}

	msg := err.Error()
	errs := make(map[string][]string)

	// Postgres code 23505
	if strings.Contains(msg, "duplicate key value violates unique constraint") {
		// duplicate key value violates unique constraint "users_email_key"
		parts := strings.Split(msg, "\"")
		if len(parts) >= 2 {
			// convention: table_field_key
			fieldParts := strings.Split(parts[1], "_")
			if len(fieldParts) >= 2 {
				field := cases.Title(language.Und).String(fieldParts[1])

				key := "errors.validations.unique"
				errMsg := translate(tr, key, i18n.Vars{
					"field": fieldLabel(tr, field),
				})
				if errMsg == key {
					errMsg = "has already been taken"
				}
				errs[field] = append(errs[field], errMsg)
			}
		}
	}

	if len(errs) == 0 {
		errs[baseErrorKey] = []string{msg}
	}

	return errs
}

func translate(tr Translator, key string, vars i18n.Vars) string {
	if tr == nil {
		return key
	}
	return tr.T(key, vars)
}

// fieldLabel translates models.fields.<field>, falling back to field.
func fieldLabel(tr Translator, field string) string {
	key := "models.fields." + field
	if label := translate(tr, key, nil); label != key {
		return label
	}
	return field
}
