package collection

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// FieldType примитивный тип поля, из которого синтезируется GraphQL тип
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTextarea FieldType = "textarea"
	FieldCode     FieldType = "code"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
)

const (
	DefaultUsername        = "email"
	DefaultTokenExpiration = 2 * time.Hour
)

var (
	ErrUnknownFieldType = errors.New("unknown field type")
	ErrInvalidConfig    = errors.New("invalid collection config")
)

// Known сообщает, умеет ли синтезатор типов работать с этим тегом
func (t FieldType) Known() bool {
	switch t {
	case FieldText, FieldEmail, FieldTextarea, FieldCode, FieldNumber, FieldCheckbox, FieldDate, FieldSelect:
		return true
	}
	return false
}

type Field struct {
	Name      string    `yaml:"name"`
	Type      FieldType `yaml:"type"`
	Required  bool      `yaml:"required"`
	SaveToJWT bool      `yaml:"saveToJWT"`
	Localized bool      `yaml:"localized"`
	Unique    bool      `yaml:"unique"`
	Hidden    bool      `yaml:"hidden"`
	Options   []string  `yaml:"options"`
}

type Labels struct {
	Singular string `yaml:"singular"`
	Plural   string `yaml:"plural"`
}

type Auth struct {
	UseAsUsername   string        `yaml:"useAsUsername"`
	TokenExpiration time.Duration `yaml:"tokenExpiration"`
}

// Collection описывает форму и поведение коллекции документов.
// Auth == nil означает обычную (не auth) коллекцию.
type Collection struct {
	Slug   string  `yaml:"slug"`
	Labels Labels  `yaml:"labels"`
	Fields []Field `yaml:"fields"`
	Auth   *Auth   `yaml:"auth"`

	names Names
}

// Names вычисленные при загрузке имена для регистрации в схеме
type Names struct {
	Singular string
	Plural   string
	Username string
}

func (c *Collection) IsAuth() bool {
	return c.Auth != nil
}

// Normalize проставляет значения по умолчанию. Вызывается до Validate.
func (c *Collection) Normalize() {
	if c.Labels.Plural == "" && c.Labels.Singular != "" {
		c.Labels.Plural = inflection.Plural(c.Labels.Singular)
	}
	if c.Slug == "" {
		c.Slug = strcase.ToKebab(c.Labels.Plural)
	}

	if c.Auth != nil {
		if c.Auth.UseAsUsername == "" {
			c.Auth.UseAsUsername = DefaultUsername
		}
		if c.Auth.TokenExpiration <= 0 {
			c.Auth.TokenExpiration = DefaultTokenExpiration
		}

		if _, ok := c.Field(c.Auth.UseAsUsername); !ok {
			typ := FieldText
			if c.Auth.UseAsUsername == DefaultUsername {
				typ = FieldEmail
			}
			username := Field{
				Name:     c.Auth.UseAsUsername,
				Type:     typ,
				Required: true,
				Unique:   true,
			}
			c.Fields = append([]Field{username}, c.Fields...)
		}
	}

	c.names = Names{
		Singular: FormatName(c.Labels.Singular),
		Plural:   FormatName(c.Labels.Plural),
	}
	if c.Auth != nil {
		c.names.Username = c.Auth.UseAsUsername
	}
}

// Validate собирает все ошибки конфигурации, а не только первую
func (c *Collection) Validate() error {
	var result *multierror.Error

	if c.Labels.Singular == "" {
		result = multierror.Append(result, fmt.Errorf("%w: collection %q: singular label is required", ErrInvalidConfig, c.Slug))
	}
	if c.Labels.Plural == "" {
		result = multierror.Append(result, fmt.Errorf("%w: collection %q: plural label is required", ErrInvalidConfig, c.Slug))
	}
	if c.names.Singular == "" || c.names.Plural == "" {
		result = multierror.Append(result, fmt.Errorf("%w: collection %q: labels produce empty names", ErrInvalidConfig, c.Slug))
	}
	if c.names.Singular != "" && c.names.Singular == c.names.Plural {
		result = multierror.Append(result, fmt.Errorf("%w: collection %q: singular and plural labels must differ", ErrInvalidConfig, c.Slug))
	}
	if len(c.Fields) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: collection %q: at least one field is required", ErrInvalidConfig, c.Slug))
	}

	seen := make(map[string]bool, len(c.Fields))
	for i, f := range c.Fields {
		switch {
		case f.Name == "":
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: field #%d has no name", ErrInvalidConfig, c.Slug, i))
			continue
		case !IsName(f.Name):
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: field name %q is not a valid identifier", ErrInvalidConfig, c.Slug, f.Name))
		case reserved[f.Name]:
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: field name %q is reserved", ErrInvalidConfig, c.Slug, f.Name))
		case seen[f.Name]:
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: duplicate field %q", ErrInvalidConfig, c.Slug, f.Name))
		}
		seen[f.Name] = true

		if !f.Type.Known() {
			result = multierror.Append(result, fmt.Errorf("%w %q: collection %q field %q", ErrUnknownFieldType, f.Type, c.Slug, f.Name))
		}
		if f.SaveToJWT && f.Hidden {
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: field %q cannot be both hidden and saved to JWT", ErrInvalidConfig, c.Slug, f.Name))
		}
		if f.Type == FieldSelect && len(f.Options) == 0 {
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: select field %q has no options", ErrInvalidConfig, c.Slug, f.Name))
		}
		for _, opt := range f.Options {
			if !IsName(opt) {
				result = multierror.Append(result, fmt.Errorf("%w: collection %q: option %q of field %q is not a valid identifier", ErrInvalidConfig, c.Slug, opt, f.Name))
			}
		}
	}

	if c.Auth != nil {
		username, ok := c.Field(c.Auth.UseAsUsername)
		switch {
		case !ok:
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: username field %q is not declared", ErrInvalidConfig, c.Slug, c.Auth.UseAsUsername))
		case username.Localized || username.Hidden:
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: username field %q cannot be localized or hidden", ErrInvalidConfig, c.Slug, username.Name))
		case username.Type == FieldNumber || username.Type == FieldCheckbox:
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: username field %q must be a string type", ErrInvalidConfig, c.Slug, username.Name))
		}
		if c.Auth.UseAsUsername == "password" {
			result = multierror.Append(result, fmt.Errorf("%w: collection %q: username field cannot be named password", ErrInvalidConfig, c.Slug))
		}
	}

	return result.ErrorOrNil()
}

// Names возвращает имена, вычисленные в Normalize
func (c *Collection) Names() Names {
	return c.names
}

func (c *Collection) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UniqueFields поля, значения которых не могут повторяться внутри коллекции
func (c *Collection) UniqueFields() []Field {
	var out []Field
	for _, f := range c.Fields {
		if f.Unique || (c.Auth != nil && f.Name == c.Auth.UseAsUsername) {
			out = append(out, f)
		}
	}
	return out
}

// имена, которые заняты служебными полями документа
var reserved = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"AND":       true,
	"OR":        true,
}
