package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robklaiss/truco/internal/config"
	apperr "github.com/robklaiss/truco/pkg/errors"
)

const ScopeUser = "user"

type Claims struct {
	UID   string `json:"uid"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

func GenerateToken(uid string) (string, error) {
	duration := time.Duration(config.GlobalConfig.JWT.Expire) * time.Hour
	claims := Claims{
		UID:   uid,
		Scope: ScopeUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   uid,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GlobalConfig.JWT.Secret))
}

func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}
