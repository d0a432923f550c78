package resolvers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinSomai/payload/internal/auth"
	"github.com/MinSomai/payload/internal/collection"
	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/internal/mocks"
	"github.com/MinSomai/payload/internal/query"
	"github.com/MinSomai/payload/internal/storage/memory"
	"github.com/MinSomai/payload/models"
)

func newUsers(t *testing.T) *collection.Collection {
	c := collection.DefaultUsers()
	require.NoError(t, collection.Prepare(collection.Localization{}, c))
	return c
}

func newPages(t *testing.T, l collection.Localization) *collection.Collection {
	c := &collection.Collection{
		Labels: collection.Labels{Singular: "Page", Plural: "Pages"},
		Fields: []collection.Field{
			{Name: "title", Type: collection.FieldText, Required: true, Localized: true},
			{Name: "slug", Type: collection.FieldText, Unique: true},
			{Name: "views", Type: collection.FieldNumber},
			{Name: "notes", Type: collection.FieldTextarea, Hidden: true},
		},
	}
	require.NoError(t, collection.Prepare(l, c))
	return c
}

func newResolvers(t *testing.T, store document.Storage, l collection.Localization) *Resolvers {
	tokens, err := auth.NewTokenService("test_secret")
	require.NoError(t, err)
	return &Resolvers{
		Store:        store,
		Tokens:       tokens,
		Localization: l,
		PasswordCost: 4,
		Logger:       zerolog.Nop(),
	}
}

// sessionContext заводит администратора в отдельной коллекции и возвращает его сессию
func sessionContext(t *testing.T, r *Resolvers) context.Context {
	t.Helper()
	admin := &models.Document{Collection: "admins", Data: models.JSON{"email": "root@example.com"}}
	require.NoError(t, r.Store.Create(context.Background(), admin))
	return auth.WithSession(context.Background(), &auth.Session{ID: admin.ID, Collection: "admins"})
}

func resolve(t *testing.T, fn graphql.FieldResolveFn, ctx context.Context, args map[string]interface{}) (interface{}, error) {
	t.Helper()
	return fn(graphql.ResolveParams{Context: ctx, Args: args})
}

func TestResolvers_CreateAndFindByID(t *testing.T) {
	r := newResolvers(t, memory.NewDocumentMemoryStorage(), collection.Localization{})
	pages := newPages(t, collection.Localization{})

	t.Run("Create requires session for plain collection", func(t *testing.T) {
		_, err := resolve(t, r.Create(pages), context.Background(), map[string]interface{}{
			"data": map[string]interface{}{"title": "Hello"},
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Create and read back", func(t *testing.T) {
		out, err := resolve(t, r.Create(pages), sessionContext(t, r), map[string]interface{}{
			"data": map[string]interface{}{"title": "Hello", "slug": "hello", "notes": "internal"},
		})
		require.NoError(t, err)

		created := out.(map[string]interface{})
		assert.NotEmpty(t, created["id"])
		assert.Equal(t, "Hello", created["title"])
		_, hidden := created["notes"]
		assert.False(t, hidden)

		found, err := resolve(t, r.FindByID(pages), context.Background(), map[string]interface{}{"id": created["id"]})
		require.NoError(t, err)
		assert.Equal(t, "hello", found.(map[string]interface{})["slug"])
	})

	t.Run("Missing required field", func(t *testing.T) {
		_, err := resolve(t, r.Create(pages), sessionContext(t, r), map[string]interface{}{
			"data": map[string]interface{}{"slug": "no-title"},
		})
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("Unique violation", func(t *testing.T) {
		_, err := resolve(t, r.Create(pages), sessionContext(t, r), map[string]interface{}{
			"data": map[string]interface{}{"title": "Again", "slug": "hello"},
		})
		assert.ErrorIs(t, err, ErrNotUnique)
	})

	t.Run("FindByID without id", func(t *testing.T) {
		_, err := resolve(t, r.FindByID(pages), context.Background(), map[string]interface{}{})
		assert.ErrorIs(t, err, ErrMissingID)
	})

	t.Run("FindByID unknown id", func(t *testing.T) {
		_, err := resolve(t, r.FindByID(pages), context.Background(), map[string]interface{}{"id": "missing"})
		assert.ErrorIs(t, err, document.ErrNotFound)
	})
}

func TestResolvers_Find(t *testing.T) {
	r := newResolvers(t, memory.NewDocumentMemoryStorage(), collection.Localization{})
	pages := newPages(t, collection.Localization{})

	for i, title := range []string{"Alpha", "Beta", "Gamma", "Delta"} {
		_, err := resolve(t, r.Create(pages), sessionContext(t, r), map[string]interface{}{
			"data": map[string]interface{}{"title": title, "views": float64(i * 10)},
		})
		require.NoError(t, err)
	}

	t.Run("Where, sort and limit", func(t *testing.T) {
		out, err := resolve(t, r.Find(pages), context.Background(), map[string]interface{}{
			"where": map[string]interface{}{"views": map[string]interface{}{"greater_than_equal": 10.0}},
			"sort":  "title",
			"limit": 2,
		})
		require.NoError(t, err)

		p := out.(*query.Paginated)
		assert.Equal(t, 3, p.TotalDocs)
		assert.Equal(t, 2, p.TotalPages)
		require.Len(t, p.Docs, 2)
		assert.Equal(t, "Beta", p.Docs[0]["title"])
		assert.Equal(t, "Delta", p.Docs[1]["title"])
	})

	t.Run("Second page", func(t *testing.T) {
		out, err := resolve(t, r.Find(pages), context.Background(), map[string]interface{}{
			"sort":  "-views",
			"page":  2,
			"limit": 3,
		})
		require.NoError(t, err)

		p := out.(*query.Paginated)
		require.Len(t, p.Docs, 1)
		assert.Equal(t, "Alpha", p.Docs[0]["title"])
		assert.True(t, p.HasPrevPage)
	})

	t.Run("Unknown operator", func(t *testing.T) {
		_, err := resolve(t, r.Find(pages), context.Background(), map[string]interface{}{
			"where": map[string]interface{}{"views": map[string]interface{}{"near": 1}},
		})
		assert.ErrorIs(t, err, query.ErrUnknownOperator)
	})
}

func TestResolvers_UpdateDelete(t *testing.T) {
	l := collection.Localization{Locales: []string{"en", "es"}, DefaultLocale: "en"}
	r := newResolvers(t, memory.NewDocumentMemoryStorage(), l)
	pages := newPages(t, l)

	out, err := resolve(t, r.Create(pages), sessionContext(t, r), map[string]interface{}{
		"data": map[string]interface{}{"title": "Hello", "views": 1.0},
	})
	require.NoError(t, err)
	id := out.(map[string]interface{})["id"]

	t.Run("Update requires session", func(t *testing.T) {
		_, err := resolve(t, r.Update(pages), context.Background(), map[string]interface{}{"id": id})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Localized partial update", func(t *testing.T) {
		out, err := resolve(t, r.Update(pages), sessionContext(t, r), map[string]interface{}{
			"id":     id,
			"locale": "es",
			"data":   map[string]interface{}{"title": "Hola"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Hola", out.(map[string]interface{})["title"])
		assert.Equal(t, 1.0, out.(map[string]interface{})["views"])

		en, err := resolve(t, r.FindByID(pages), context.Background(), map[string]interface{}{"id": id, "locale": "en"})
		require.NoError(t, err)
		assert.Equal(t, "Hello", en.(map[string]interface{})["title"])
	})

	t.Run("Required field cannot be cleared", func(t *testing.T) {
		_, err := resolve(t, r.Update(pages), sessionContext(t, r), map[string]interface{}{
			"id":   id,
			"data": map[string]interface{}{"title": nil},
		})
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("Update unknown id", func(t *testing.T) {
		_, err := resolve(t, r.Update(pages), sessionContext(t, r), map[string]interface{}{"id": "missing"})
		assert.ErrorIs(t, err, document.ErrNotFound)
	})

	t.Run("Delete requires session", func(t *testing.T) {
		_, err := resolve(t, r.Delete(pages), context.Background(), map[string]interface{}{"id": id})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Delete returns removed document", func(t *testing.T) {
		out, err := resolve(t, r.Delete(pages), sessionContext(t, r), map[string]interface{}{"id": id})
		require.NoError(t, err)
		assert.Equal(t, id, out.(map[string]interface{})["id"])

		_, err = resolve(t, r.FindByID(pages), context.Background(), map[string]interface{}{"id": id})
		assert.ErrorIs(t, err, document.ErrNotFound)
	})
}

func TestResolvers_StorageErrors(t *testing.T) {
	store := mocks.NewMockDocumentStorage()
	store.Fail = true
	r := newResolvers(t, store, collection.Localization{})
	users := newUsers(t)

	_, err := resolve(t, r.Find(users), context.Background(), nil)
	assert.ErrorIs(t, err, mocks.ErrMockFailure)

	_, err = resolve(t, r.Init(users), context.Background(), nil)
	assert.ErrorIs(t, err, mocks.ErrMockFailure)

	_, err = resolve(t, r.Create(users), context.Background(), map[string]interface{}{
		"data":     map[string]interface{}{"email": "a@example.com"},
		"password": "secret",
	})
	assert.ErrorIs(t, err, mocks.ErrMockFailure)

	assert.Equal(t, []string{"List", "Count", "Count"}, store.Calls)
}

func TestValidateInput(t *testing.T) {
	c := &collection.Collection{
		Labels: collection.Labels{Singular: "Event", Plural: "Events"},
		Fields: []collection.Field{
			{Name: "contact", Type: collection.FieldEmail},
			{Name: "startsAt", Type: collection.FieldDate},
			{Name: "kind", Type: collection.FieldSelect, Options: []string{"online", "offline"}},
		},
	}
	require.NoError(t, collection.Prepare(collection.Localization{}, c))

	t.Run("Valid values", func(t *testing.T) {
		err := validateInput(c, map[string]interface{}{
			"contact":  "team@example.com",
			"startsAt": "2024-05-01T10:00:00Z",
			"kind":     "online",
		})
		assert.NoError(t, err)
	})

	t.Run("Missing values are skipped", func(t *testing.T) {
		assert.NoError(t, validateInput(c, map[string]interface{}{"contact": nil}))
	})

	t.Run("Invalid values", func(t *testing.T) {
		err := validateInput(c, map[string]interface{}{
			"contact":  "not-an-email",
			"startsAt": "yesterday",
			"kind":     "hybrid",
		})
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "contact")
		assert.Contains(t, err.Error(), "startsAt")
		assert.Contains(t, err.Error(), "kind")
	})

	t.Run("Create rejects invalid email", func(t *testing.T) {
		r := newResolvers(t, memory.NewDocumentMemoryStorage(), collection.Localization{})
		_, err := resolve(t, r.Create(c), sessionContext(t, r), map[string]interface{}{
			"data": map[string]interface{}{"contact": "nope"},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestResolvers_StaleSession(t *testing.T) {
	r := newResolvers(t, memory.NewDocumentMemoryStorage(), collection.Localization{})
	pages := newPages(t, collection.Localization{})

	out, err := resolve(t, r.Create(pages), sessionContext(t, r), map[string]interface{}{
		"data": map[string]interface{}{"title": "Hello"},
	})
	require.NoError(t, err)
	id := out.(map[string]interface{})["id"]

	stale := auth.WithSession(context.Background(), &auth.Session{ID: "deleted", Collection: "admins"})

	_, err = resolve(t, r.Create(pages), stale, map[string]interface{}{
		"data": map[string]interface{}{"title": "Again"},
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = resolve(t, r.Update(pages), stale, map[string]interface{}{
		"id":   id,
		"data": map[string]interface{}{"title": "Changed"},
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = resolve(t, r.Delete(pages), stale, map[string]interface{}{"id": id})
	assert.ErrorIs(t, err, ErrUnauthorized)

	found, err := resolve(t, r.FindByID(pages), context.Background(), map[string]interface{}{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "Hello", found.(map[string]interface{})["title"])
}

func TestResolvers_ConcurrentCreate(t *testing.T) {
	t.Run("Only one anonymous first user", func(t *testing.T) {
		store := memory.NewDocumentMemoryStorage()
		r := newResolvers(t, store, collection.Localization{})
		users := newUsers(t)

		const workers = 20
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := resolve(t, r.Create(users), context.Background(), map[string]interface{}{
					"data":     map[string]interface{}{"email": fmt.Sprintf("user%d@example.com", i)},
					"password": "secret",
				})
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, ErrUnauthorized)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		n, err := store.Count(context.Background(), users.Slug)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Unique value written once", func(t *testing.T) {
		store := memory.NewDocumentMemoryStorage()
		r := newResolvers(t, store, collection.Localization{})
		pages := newPages(t, collection.Localization{})
		ctx := sessionContext(t, r)

		const workers = 10
		errs := make(chan error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := resolve(t, r.Create(pages), ctx, map[string]interface{}{
					"data": map[string]interface{}{"title": fmt.Sprintf("Page %d", i), "slug": "home"},
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, ErrNotUnique), err.Error())
		}
		assert.Equal(t, 1, succeeded)

		n, err := store.Count(context.Background(), pages.Slug)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
