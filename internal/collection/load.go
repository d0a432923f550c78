package collection

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// File формат файла с описанием коллекций
type File struct {
	Localization Localization  `yaml:"localization"`
	Collections  []*Collection `yaml:"collections"`
}

// LoadFile читает YAML, нормализует и валидирует все коллекции.
// Любая ошибка конфигурации фатальна для запуска сервера.
func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read collections file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("could not parse collections file %s: %w", path, err)
	}
	if len(file.Collections) == 0 {
		return nil, fmt.Errorf("%w: %s declares no collections", ErrInvalidConfig, path)
	}

	if err := Prepare(file.Localization, file.Collections...); err != nil {
		return nil, err
	}
	return &file, nil
}

// Prepare нормализует и валидирует коллекции вместе с настройками локализации
func Prepare(l Localization, collections ...*Collection) error {
	var result *multierror.Error

	if l.DefaultLocale != "" && !l.Has(l.DefaultLocale) {
		result = multierror.Append(result, fmt.Errorf("%w: default locale %q is not in locales", ErrInvalidConfig, l.DefaultLocale))
	}
	for _, loc := range l.Locales {
		if !IsName(loc) || loc == FallbackNone {
			result = multierror.Append(result, fmt.Errorf("%w: locale %q is not a valid identifier", ErrInvalidConfig, loc))
		}
	}

	slugs := make(map[string]bool, len(collections))
	for _, c := range collections {
		c.Normalize()
		if err := c.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
		if slugs[c.Slug] {
			result = multierror.Append(result, fmt.Errorf("%w: duplicate collection slug %q", ErrInvalidConfig, c.Slug))
		}
		slugs[c.Slug] = true
	}

	return result.ErrorOrNil()
}

// DefaultUsers встроенная auth коллекция, если файл коллекций не задан
func DefaultUsers() *Collection {
	return &Collection{
		Slug: "users",
		Labels: Labels{
			Singular: "User",
			Plural:   "Users",
		},
		Fields: []Field{
			{Name: "email", Type: FieldEmail, Required: true, Unique: true},
			{Name: "name", Type: FieldText, SaveToJWT: true},
			{Name: "role", Type: FieldSelect, Options: []string{"admin", "editor", "user"}, SaveToJWT: true},
		},
		Auth: &Auth{
			UseAsUsername: "email",
		},
	}
}
