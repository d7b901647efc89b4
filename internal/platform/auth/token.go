package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hookd/internal/platform/config"
)

// ServiceClaims identify the producer service calling the internal dispatch
// endpoint. End-user authentication lives in the surrounding CRM; this is
// strictly service-to-service.
type ServiceClaims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.AuthConfig
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{config: cfg}
}

func (s *TokenService) Issue(service string) (string, error) {
	ttl := s.config.ServiceTokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	claims := ServiceClaims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "hookd",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.ServiceTokenSecret))
}

func (s *TokenService) Validate(tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.ServiceTokenSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
