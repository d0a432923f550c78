// internal/auth/context.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type contextKey string

const sessionKey = contextKey("session")

var ErrNoSession = errors.New("session not found in context")

// Session данные, восстановленные из токена
type Session struct {
	ID         string
	Collection string
	Fields     map[string]interface{}
}

// Сохраняет сессию в контексте
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Достает сессию из контекста
func SessionFromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// Middleware извлекает сессию из JWT и помещает ее в context
func Middleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
			if tokenStr == "" {
				next.ServeHTTP(w, r) // неавторизованный доступ - пропускаем
				return
			}

			session, err := tokens.Parse(tokenStr)
			if err != nil {
				// невалидный токен - пропускаем как анонимный запрос
				log.Debug().Err(err).Msg("rejected bearer token")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
