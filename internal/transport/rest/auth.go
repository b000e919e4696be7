package rest

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"clinic/internal/domain"
)

// tokenClaims matches the access tokens issued by the clinic's auth service.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int64           `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// TokenVerifier turns a bearer token into the caller's principal. It never
// issues tokens.
type TokenVerifier struct {
	signingKey []byte
}

func NewTokenVerifier(signingKey string) *TokenVerifier {
	return &TokenVerifier{signingKey: []byte(signingKey)}
}

func (v *TokenVerifier) Verify(tokenString string) (domain.AuthenticatedPrincipal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return domain.AuthenticatedPrincipal{}, fmt.Errorf("ошибка парсинга токена: %w", err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return domain.AuthenticatedPrincipal{}, errors.New("недействительный токен")
	}

	if claims.UserID <= 0 || !claims.Role.Valid() {
		return domain.AuthenticatedPrincipal{}, errors.New("в токене нет пользователя или роли")
	}

	return domain.AuthenticatedPrincipal{UserID: claims.UserID, Role: claims.Role}, nil
}
