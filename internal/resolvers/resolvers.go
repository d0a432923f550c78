package resolvers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/MinSomai/payload/internal/auth"
	"github.com/MinSomai/payload/internal/collection"
	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/internal/query"
	"github.com/MinSomai/payload/internal/schema"
	"github.com/MinSomai/payload/models"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotUnique          = errors.New("value must be unique")
	ErrMissingField       = errors.New("required field is missing")
	ErrMissingID          = errors.New("id is required")
)

// Resolvers связывает коллекции с хранилищем и токенами.
// Фабрики возвращают замыкания, которые вызываются на каждый запрос.
type Resolvers struct {
	Store        document.Storage
	Tokens       *auth.TokenService
	Localization collection.Localization
	PasswordCost int
	Logger       zerolog.Logger

	locks sync.Map // slug коллекции -> *sync.Mutex
}

// Collection набор CRUD резолверов для регистрации коллекции
func (r *Resolvers) Collection(c *collection.Collection) schema.CollectionResolvers {
	return schema.CollectionResolvers{
		FindByID: r.FindByID(c),
		Find:     r.Find(c),
		Create:   r.Create(c),
		Update:   r.Update(c),
		Delete:   r.Delete(c),
	}
}

// Auth набор auth резолверов
func (r *Resolvers) Auth(c *collection.Collection) schema.AuthResolvers {
	return schema.AuthResolvers{
		Login:   r.Login(c),
		Me:      r.Me(c),
		Init:    r.Init(c),
		Refresh: r.Refresh(c),
	}
}

func (r *Resolvers) FindByID(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		id := stringArg(p.Args, "id")
		if id == "" {
			return nil, ErrMissingID
		}

		doc, err := r.Store.Get(p.Context, c.Slug, id)
		if err != nil {
			return nil, err
		}
		return r.output(c, doc, stringArg(p.Args, "locale"), stringArg(p.Args, "fallbackLocale")), nil
	}
}

func (r *Resolvers) Find(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		docs, err := r.Store.List(p.Context, c.Slug)
		if err != nil {
			return nil, err
		}

		locale, fallback := stringArg(p.Args, "locale"), stringArg(p.Args, "fallbackLocale")
		projected := make([]map[string]interface{}, 0, len(docs))
		for _, doc := range docs {
			projected = append(projected, r.output(c, doc, locale, fallback))
		}

		where, _ := p.Args["where"].(map[string]interface{})
		matched, err := query.Filter(projected, where)
		if err != nil {
			return nil, err
		}

		query.Sort(matched, stringArg(p.Args, "sort"))
		return query.Paginate(matched, intArg(p.Args, "page"), intArg(p.Args, "limit")), nil
	}
}

// Create без сессии разрешен только для первого документа auth коллекции
func (r *Resolvers) Create(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		input, _ := p.Args["data"].(map[string]interface{})
		for _, f := range c.Fields {
			if f.Required && input[f.Name] == nil {
				return nil, fmt.Errorf("%w: %s", ErrMissingField, f.Name)
			}
		}
		if err := validateInput(c, input); err != nil {
			return nil, err
		}

		locale := stringArg(p.Args, "locale")
		doc := &models.Document{
			Collection: c.Slug,
			Data:       c.ApplyInput(nil, input, r.Localization, locale),
		}

		unlock := r.lock(c.Slug)
		defer unlock()

		if err := r.authorizeCreate(p.Context, c); err != nil {
			return nil, err
		}
		if err := r.checkUnique(p.Context, c, doc, locale); err != nil {
			return nil, err
		}

		if c.IsAuth() {
			hash, err := auth.HashPassword(stringArg(p.Args, "password"), r.PasswordCost)
			if err != nil {
				return nil, err
			}
			doc.Hash = hash
		}

		if err := r.Store.Create(p.Context, doc); err != nil {
			return nil, err
		}
		r.Logger.Info().Str("collection", c.Slug).Str("id", doc.ID).Msg("document created")

		return r.output(c, doc, locale, ""), nil
	}
}

// lock сериализует записи в одну коллекцию
func (r *Resolvers) lock(slug string) func() {
	m, _ := r.locks.LoadOrStore(slug, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// authorize требует сессию, пользователь которой все еще существует
func (r *Resolvers) authorize(ctx context.Context) (*auth.Session, error) {
	s, err := auth.SessionFromContext(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}

	_, err = r.Store.Get(ctx, s.Collection, s.ID)
	if errors.Is(err, document.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s no longer exists", ErrUnauthorized, s.ID)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// вызывается под lock коллекции
func (r *Resolvers) authorizeCreate(ctx context.Context, c *collection.Collection) error {
	if _, err := auth.SessionFromContext(ctx); err == nil {
		_, err = r.authorize(ctx)
		return err
	}
	if !c.IsAuth() {
		return ErrUnauthorized
	}

	n, err := r.Store.Count(ctx, c.Slug)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrUnauthorized
	}
	return nil
}

func (r *Resolvers) Update(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if _, err := r.authorize(p.Context); err != nil {
			return nil, err
		}

		id := stringArg(p.Args, "id")
		if id == "" {
			return nil, ErrMissingID
		}

		unlock := r.lock(c.Slug)
		defer unlock()

		doc, err := r.Store.Get(p.Context, c.Slug, id)
		if err != nil {
			return nil, err
		}

		input, _ := p.Args["data"].(map[string]interface{})
		for _, f := range c.Fields {
			if v, ok := input[f.Name]; ok && v == nil && f.Required {
				return nil, fmt.Errorf("%w: %s", ErrMissingField, f.Name)
			}
		}
		if err := validateInput(c, input); err != nil {
			return nil, err
		}

		locale := stringArg(p.Args, "locale")
		doc.Data = c.ApplyInput(doc.Data, input, r.Localization, locale)
		if err := r.checkUnique(p.Context, c, doc, locale); err != nil {
			return nil, err
		}

		if err := r.Store.Update(p.Context, doc); err != nil {
			return nil, err
		}
		return r.output(c, doc, locale, ""), nil
	}
}

func (r *Resolvers) Delete(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if _, err := r.authorize(p.Context); err != nil {
			return nil, err
		}

		id := stringArg(p.Args, "id")
		if id == "" {
			return nil, ErrMissingID
		}

		doc, err := r.Store.Delete(p.Context, c.Slug, id)
		if err != nil {
			return nil, err
		}
		r.Logger.Info().Str("collection", c.Slug).Str("id", doc.ID).Msg("document deleted")

		return r.output(c, doc, "", ""), nil
	}
}

// checkUnique сравнивает значения уникальных полей с остальными документами коллекции
func (r *Resolvers) checkUnique(ctx context.Context, c *collection.Collection, doc *models.Document, locale string) error {
	unique := c.UniqueFields()
	if len(unique) == 0 {
		return nil
	}

	current := c.Localize(doc.Data, r.Localization, locale, collection.FallbackNone)
	others, err := r.Store.List(ctx, c.Slug)
	if err != nil {
		return err
	}

	for _, f := range unique {
		v, ok := current[f.Name]
		if !ok || v == nil {
			continue
		}
		for _, other := range others {
			if other.ID == doc.ID {
				continue
			}
			data := c.Localize(other.Data, r.Localization, locale, collection.FallbackNone)
			matched, err := query.Match(data, map[string]interface{}{
				f.Name: map[string]interface{}{"equals": v},
			})
			if err != nil {
				return err
			}
			if matched {
				return fmt.Errorf("%w: %s", ErrNotUnique, f.Name)
			}
		}
	}
	return nil
}

// output проекция документа на его GraphQL тип; хеш пароля не попадает наружу
func (r *Resolvers) output(c *collection.Collection, doc *models.Document, locale, fallback string) map[string]interface{} {
	data := c.Localize(doc.Data, r.Localization, locale, fallback)

	out := map[string]interface{}{
		"id":        doc.ID,
		"createdAt": doc.CreatedAt,
		"updatedAt": doc.UpdatedAt,
	}
	for _, f := range c.Fields {
		if f.Hidden {
			continue
		}
		if v, ok := data[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]interface{}, name string) int {
	n, _ := args[name].(int)
	return n
}
