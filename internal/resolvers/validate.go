package resolvers

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/MinSomai/payload/internal/collection"
)

var ErrInvalidInput = errors.New("invalid input")

// validateInput проверяет значения по типам полей, ключи ошибок совпадают с именами полей
func validateInput(c *collection.Collection, input map[string]interface{}) error {
	errs := validation.Errors{}
	for _, f := range c.Fields {
		v, ok := input[f.Name]
		if !ok || v == nil {
			continue
		}

		switch f.Type {
		case collection.FieldEmail:
			errs[f.Name] = validation.Validate(v, is.Email)
		case collection.FieldDate:
			errs[f.Name] = validation.Validate(v, validation.Date(time.RFC3339).Error("must be an RFC3339 date"))
		case collection.FieldSelect:
			errs[f.Name] = validation.Validate(v, validation.In(options(f)...))
		}
	}

	if err := errs.Filter(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func options(f collection.Field) []interface{} {
	out := make([]interface{}, len(f.Options))
	for i, o := range f.Options {
		out[i] = o
	}
	return out
}
