package resolvers

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/MinSomai/payload/internal/auth"
	"github.com/MinSomai/payload/internal/collection"
	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/internal/query"
	"github.com/MinSomai/payload/models"
)

// Login проверяет пароль и выдает токен. Имя аргумента username
// берется из auth.useAsUsername коллекции.
func (r *Resolvers) Login(c *collection.Collection) graphql.FieldResolveFn {
	usernameField := c.Names().Username

	return func(p graphql.ResolveParams) (interface{}, error) {
		username := stringArg(p.Args, usernameField)
		password := stringArg(p.Args, "password")
		if username == "" || password == "" {
			return nil, ErrInvalidCredentials
		}

		docs, err := r.Store.List(p.Context, c.Slug)
		if err != nil {
			return nil, err
		}

		var user *models.Document
		for _, doc := range docs {
			ok, err := query.Match(doc.Data, map[string]interface{}{
				usernameField: map[string]interface{}{"equals": username},
			})
			if err != nil {
				return nil, err
			}
			if ok {
				user = doc
				break
			}
		}
		if user == nil {
			r.Logger.Debug().Str("collection", c.Slug).Msg("login for unknown user")
			return nil, ErrInvalidCredentials
		}

		if err := auth.ComparePassword(user.Hash, password); err != nil {
			r.Logger.Debug().Str("collection", c.Slug).Str("id", user.ID).Msg("login with wrong password")
			return nil, ErrInvalidCredentials
		}

		return r.issue(c, user)
	}
}

// Me возвращает claims текущей сессии или null для анонимного запроса
func (r *Resolvers) Me(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		s, err := auth.SessionFromContext(p.Context)
		if err != nil || s.Collection != c.Slug {
			return nil, nil
		}
		return s.Fields, nil
	}
}

// Init сообщает, есть ли в коллекции хотя бы один документ
func (r *Resolvers) Init(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		n, err := r.Store.Count(p.Context, c.Slug)
		if err != nil {
			return nil, err
		}
		return n > 0, nil
	}
}

// Refresh перевыпускает токен по актуальным данным пользователя из сессии
func (r *Resolvers) Refresh(c *collection.Collection) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		s, err := auth.SessionFromContext(p.Context)
		if err != nil || s.Collection != c.Slug {
			return nil, ErrUnauthorized
		}

		user, err := r.Store.Get(p.Context, c.Slug, s.ID)
		if errors.Is(err, document.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s no longer exists", ErrUnauthorized, s.ID)
		}
		if err != nil {
			return nil, err
		}

		return r.issue(c, user)
	}
}

func (r *Resolvers) issue(c *collection.Collection, user *models.Document) (interface{}, error) {
	data := c.Localize(user.Data, r.Localization, "", "")
	token, err := r.Tokens.Issue(&auth.Session{
		ID:         user.ID,
		Collection: c.Slug,
		Fields:     c.Claims(data),
	}, c.Auth.TokenExpiration)
	if err != nil {
		return nil, err
	}
	return token, nil
}
