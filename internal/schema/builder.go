package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/MinSomai/payload/internal/collection"
)

var ErrFieldConflict = errors.New("field already registered")

type Option func(*Builder)

// WithOverride включает старое поведение: повторная регистрация поля
// молча заменяет предыдущую
func WithOverride() Option {
	return func(b *Builder) { b.override = true }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func WithLocalization(l collection.Localization) Option {
	return func(b *Builder) { b.localization = l }
}

// Builder собирает схему из фрагментов коллекций.
// Используется однократно при старте, не потокобезопасен.
type Builder struct {
	localization collection.Localization
	override     bool
	logger       zerolog.Logger

	localeType         graphql.Input
	fallbackLocaleType graphql.Input

	types    map[string]*CollectionTypes
	query    graphql.Fields
	mutation graphql.Fields
	owners   map[string]string // "Query.Page" -> slug коллекции
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:   zerolog.Nop(),
		types:    make(map[string]*CollectionTypes),
		query:    graphql.Fields{},
		mutation: graphql.Fields{},
		owners:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.localeType, b.fallbackLocaleType = buildLocaleTypes(b.localization)
	return b
}

func (b *Builder) Localization() collection.Localization {
	return b.localization
}

// LocaleInputType общий тип аргумента locale
func (b *Builder) LocaleInputType() graphql.Input {
	return b.localeType
}

// FallbackLocaleInputType общий тип аргумента fallbackLocale
func (b *Builder) FallbackLocaleInputType() graphql.Input {
	return b.fallbackLocaleType
}

func buildLocaleTypes(l collection.Localization) (graphql.Input, graphql.Input) {
	if !l.Enabled() {
		return graphql.String, graphql.String
	}

	locales := graphql.EnumValueConfigMap{}
	fallback := graphql.EnumValueConfigMap{
		collection.FallbackNone: &graphql.EnumValueConfig{Value: collection.FallbackNone},
	}
	for _, loc := range l.Locales {
		locales[loc] = &graphql.EnumValueConfig{Value: loc}
		fallback[loc] = &graphql.EnumValueConfig{Value: loc}
	}

	localeType := graphql.NewEnum(graphql.EnumConfig{
		Name:   "LocaleInputType",
		Values: locales,
	})
	fallbackType := graphql.NewEnum(graphql.EnumConfig{
		Name:   "FallbackLocaleInputType",
		Values: fallback,
	})
	return localeType, fallbackType
}

// Merge добавляет фрагмент в корни Query и Mutation.
// Конфликтующие имена приводят к ошибке, и фрагмент не добавляется целиком,
// если не включен WithOverride.
func (b *Builder) Merge(f *Fragment) error {
	if !b.override {
		var conflicts *multierror.Error
		for _, name := range f.QueryFields() {
			if owner, ok := b.owners["Query."+name]; ok {
				conflicts = multierror.Append(conflicts, fmt.Errorf("%w: Query.%s (by %q, again by %q)", ErrFieldConflict, name, owner, f.Collection))
			}
		}
		for _, name := range f.MutationFields() {
			if owner, ok := b.owners["Mutation."+name]; ok {
				conflicts = multierror.Append(conflicts, fmt.Errorf("%w: Mutation.%s (by %q, again by %q)", ErrFieldConflict, name, owner, f.Collection))
			}
		}
		if err := conflicts.ErrorOrNil(); err != nil {
			return err
		}
	}

	b.mergeRoot("Query", b.query, f.query, f.Collection)
	b.mergeRoot("Mutation", b.mutation, f.mutation, f.Collection)
	return nil
}

func (b *Builder) mergeRoot(root string, dst, src graphql.Fields, slug string) {
	for _, name := range sortedNames(src) {
		key := root + "." + name
		if owner, ok := b.owners[key]; ok {
			b.logger.Warn().Str("field", key).Str("previous", owner).Str("collection", slug).Msg("overriding registered field")
		}
		dst[name] = src[name]
		b.owners[key] = slug
		b.logger.Debug().Str("field", key).Str("collection", slug).Msg("registered field")
	}
}

// Build создает исполняемую схему из всех добавленных фрагментов
func (b *Builder) Build() (graphql.Schema, error) {
	if len(b.query) == 0 {
		return graphql.Schema{}, errors.New("no query fields registered")
	}

	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: b.query,
		}),
	}
	if len(b.mutation) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: b.mutation,
		})
	}

	s, err := graphql.NewSchema(cfg)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("could not build schema: %w", err)
	}
	return s, nil
}

func sortedNames(fields graphql.Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
