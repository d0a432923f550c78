package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/MinSomai/payload/internal/auth"
	"github.com/MinSomai/payload/internal/collection"
	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/internal/resolvers"
	"github.com/MinSomai/payload/internal/schema"
)

// Resolver служит корневой точкой сборки схемы.
// Здесь внедряются зависимости: хранилище, токены и локализация.
type Resolver struct {
	Store        document.Storage
	Tokens       *auth.TokenService
	Localization collection.Localization
	PasswordCost int
	// Override разрешает повторную регистрацию полей, последняя побеждает
	Override bool
	Logger   zerolog.Logger
}

// NewSchema регистрирует коллекции в порядке перечисления и собирает схему
func (r *Resolver) NewSchema(collections ...*collection.Collection) (graphql.Schema, error) {
	if len(collections) == 0 {
		return graphql.Schema{}, fmt.Errorf("%w: no collections", collection.ErrInvalidConfig)
	}
	if err := collection.Prepare(r.Localization, collections...); err != nil {
		return graphql.Schema{}, err
	}

	opts := []schema.Option{
		schema.WithLogger(r.Logger),
		schema.WithLocalization(r.Localization),
	}
	if r.Override {
		opts = append(opts, schema.WithOverride())
	}
	b := schema.NewBuilder(opts...)

	res := &resolvers.Resolvers{
		Store:        r.Store,
		Tokens:       r.Tokens,
		Localization: r.Localization,
		PasswordCost: r.PasswordCost,
		Logger:       r.Logger,
	}

	var errs *multierror.Error
	for _, c := range collections {
		var (
			f   *schema.Fragment
			err error
		)
		if c.IsAuth() {
			f, err = schema.RegisterAuthCollection(b, c, res.Collection(c), res.Auth(c))
		} else {
			f, err = schema.RegisterCollection(b, c, res.Collection(c))
		}
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := b.Merge(f); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		r.Logger.Info().Str("collection", c.Slug).Bool("auth", c.IsAuth()).Msg("collection registered")
	}
	if err := errs.ErrorOrNil(); err != nil {
		return graphql.Schema{}, err
	}

	return b.Build()
}
