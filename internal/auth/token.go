package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// служебные claims, которые не попадают в Session.Fields
var registered = map[string]bool{
	"id":         true,
	"collection": true,
	"iat":        true,
	"exp":        true,
	"jti":        true,
}

type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not set")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue подписывает токен с полями сессии на верхнем уровне claims
func (ts *TokenService) Issue(s *Session, ttl time.Duration) (string, error) {
	now := ts.now()

	claims := jwt.MapClaims{}
	for k, v := range s.Fields {
		if !registered[k] {
			claims[k] = v
		}
	}
	claims["id"] = s.ID
	claims["collection"] = s.Collection
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()
	claims["jti"] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Parse проверяет подпись и срок действия
func (ts *TokenService) Parse(tokenStr string) (*Session, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	collection, _ := claims["collection"].(string)
	if id == "" || collection == "" {
		return nil, fmt.Errorf("%w: missing id or collection claim", ErrInvalidToken)
	}

	s := &Session{
		ID:         id,
		Collection: collection,
		Fields:     make(map[string]interface{}, len(claims)),
	}
	for k, v := range claims {
		if !registered[k] {
			s.Fields[k] = v
		}
	}
	return s, nil
}
