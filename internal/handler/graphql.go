package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/rs/zerolog"
)

// максимальный размер тела запроса
const maxBodySize = 1 << 20

type request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler исполняет GraphQL запросы над собранной схемой
type Handler struct {
	schema graphql.Schema
	logger zerolog.Logger
}

func New(schema graphql.Schema, logger zerolog.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request

	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
		req.OperationName = r.URL.Query().Get("operationName")
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				h.writeError(w, http.StatusBadRequest, errors.New("variables must be a JSON object"))
				return
			}
		}

	case http.MethodPost:
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, errors.New("request body must be a JSON object"))
			return
		}

	default:
		w.Header().Set("Allow", "GET, POST")
		h.writeError(w, http.StatusMethodNotAllowed, errors.New("request must be a GET or POST"))
		return
	}

	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("request must include a query"))
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	for _, err := range result.Errors {
		h.logger.Debug().Str("operation", req.OperationName).Msg(err.Message)
	}

	h.write(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.write(w, status, &graphql.Result{
		Errors: []gqlerrors.FormattedError{gqlerrors.NewFormattedError(err.Error())},
	})
}

func (h *Handler) write(w http.ResponseWriter, status int, result *graphql.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error().Err(err).Msg("failed to write response")
	}
}
