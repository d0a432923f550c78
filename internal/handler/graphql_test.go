package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) graphql.Schema {
	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"hello": &graphql.Field{
					Type: graphql.String,
					Args: graphql.FieldConfigArgument{"name": {Type: graphql.String}},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						name, _ := p.Args["name"].(string)
						if name == "" {
							name = "world"
						}
						return "hello " + name, nil
					},
				},
			},
		}),
	})
	require.NoError(t, err)
	return s
}

type response struct {
	Data   map[string]interface{}   `json:"data"`
	Errors []map[string]interface{} `json:"errors"`
}

func serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	New(testSchema(t), zerolog.Nop()).ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandler(t *testing.T) {
	t.Run("POST with variables", func(t *testing.T) {
		body := `{"query":"query Greet($name: String) { hello(name: $name) }","variables":{"name":"payload"},"operationName":"Greet"}`
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))

		rec, resp := serve(t, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Empty(t, resp.Errors)
		assert.Equal(t, "hello payload", resp.Data["hello"])
	})

	t.Run("GET query string", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ hello }"), nil)

		rec, resp := serve(t, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello world", resp.Data["hello"])
	})

	t.Run("GraphQL errors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ missing }"}`))

		rec, resp := serve(t, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, resp.Errors)
	})

	t.Run("Invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`not json`))

		rec, resp := serve(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, resp.Errors, 1)
	})

	t.Run("Missing query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`))

		rec, resp := serve(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "request must include a query", resp.Errors[0]["message"])
	})

	t.Run("Method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/graphql", nil)

		rec, _ := serve(t, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
	})
}
