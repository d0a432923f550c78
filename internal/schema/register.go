package schema

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/MinSomai/payload/internal/collection"
)

// CollectionResolvers резолверы CRUD операций коллекции
type CollectionResolvers struct {
	FindByID graphql.FieldResolveFn
	Find     graphql.FieldResolveFn
	Create   graphql.FieldResolveFn
	Update   graphql.FieldResolveFn
	Delete   graphql.FieldResolveFn
}

// AuthResolvers резолверы auth операций
type AuthResolvers struct {
	Login   graphql.FieldResolveFn
	Me      graphql.FieldResolveFn
	Init    graphql.FieldResolveFn
	Refresh graphql.FieldResolveFn
}

// Fragment неизменяемый результат регистрации одной коллекции
type Fragment struct {
	Collection string
	query      graphql.Fields
	mutation   graphql.Fields
}

func (f *Fragment) QueryFields() []string {
	return sortedNames(f.query)
}

func (f *Fragment) MutationFields() []string {
	return sortedNames(f.mutation)
}

func (f *Fragment) Query(name string) (*graphql.Field, bool) {
	field, ok := f.query[name]
	return field, ok
}

func (f *Fragment) Mutation(name string) (*graphql.Field, bool) {
	field, ok := f.mutation[name]
	return field, ok
}

// RegisterCollection строит поля <Singular>, <Plural>, create/update/delete<Singular>
func RegisterCollection(b *Builder, c *collection.Collection, r CollectionResolvers) (*Fragment, error) {
	types, err := b.Types(c)
	if err != nil {
		return nil, fmt.Errorf("could not register collection %q: %w", c.Slug, err)
	}

	names := c.Names()
	f := &Fragment{
		Collection: c.Slug,
		query:      graphql.Fields{},
		mutation:   graphql.Fields{},
	}

	f.query[names.Singular] = &graphql.Field{
		Type: types.Object,
		Args: graphql.FieldConfigArgument{
			"id":             {Type: graphql.String},
			"locale":         {Type: b.LocaleInputType()},
			"fallbackLocale": {Type: b.FallbackLocaleInputType()},
		},
		Resolve: r.FindByID,
	}

	f.query[names.Plural] = &graphql.Field{
		Type: types.Paginated,
		Args: graphql.FieldConfigArgument{
			"where":          {Type: types.Where},
			"locale":         {Type: b.LocaleInputType()},
			"fallbackLocale": {Type: b.FallbackLocaleInputType()},
			"page":           {Type: graphql.Int},
			"limit":          {Type: graphql.Int},
			"sort":           {Type: graphql.String},
		},
		Resolve: r.Find,
	}

	createArgs := graphql.FieldConfigArgument{
		"data":   {Type: graphql.NewNonNull(types.MutationInput)},
		"locale": {Type: b.LocaleInputType()},
	}
	if c.IsAuth() {
		createArgs["password"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	}
	f.mutation["create"+names.Singular] = &graphql.Field{
		Type:    types.Object,
		Args:    createArgs,
		Resolve: r.Create,
	}

	f.mutation["update"+names.Singular] = &graphql.Field{
		Type: types.Object,
		Args: graphql.FieldConfigArgument{
			"id":     {Type: graphql.NewNonNull(graphql.String)},
			"data":   {Type: types.MutationInput},
			"locale": {Type: b.LocaleInputType()},
		},
		Resolve: r.Update,
	}

	f.mutation["delete"+names.Singular] = &graphql.Field{
		Type: types.Object,
		Args: graphql.FieldConfigArgument{
			"id": {Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: r.Delete,
	}

	return f, nil
}

// RegisterAuthCollection добавляет к полям коллекции Me, Initialized, login и refreshToken
func RegisterAuthCollection(b *Builder, c *collection.Collection, r CollectionResolvers, a AuthResolvers) (*Fragment, error) {
	if !c.IsAuth() {
		return nil, fmt.Errorf("collection %q has no auth config", c.Slug)
	}

	f, err := RegisterCollection(b, c, r)
	if err != nil {
		return nil, err
	}

	types, err := b.Types(c)
	if err != nil {
		return nil, err
	}

	f.query["Me"] = &graphql.Field{
		Type:    types.Me,
		Resolve: a.Me,
	}

	f.query["Initialized"] = &graphql.Field{
		Type:    graphql.NewNonNull(graphql.Boolean),
		Resolve: a.Init,
	}

	f.mutation["login"] = &graphql.Field{
		Type: graphql.String,
		Args: graphql.FieldConfigArgument{
			c.Names().Username: {Type: graphql.String},
			"password":         {Type: graphql.String},
		},
		Resolve: a.Login,
	}

	f.mutation["refreshToken"] = &graphql.Field{
		Type:    graphql.String,
		Resolve: a.Refresh,
	}

	return f, nil
}
