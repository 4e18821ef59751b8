package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/moolapay/agency-service/internal/ports"
)

// JWTVerifier validates HS256 agent tokens issued by the identity service.
// The secret is held at adapter level so the application layer stays
// crypto-library agnostic.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

type agentJWTClaims struct {
	AgentID       string `json:"id"`
	AgentName     string `json:"name"`
	AgentCategory string `json:"agentCategory"`
	UserAuth      string `json:"userAuth"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(raw string) (ports.AgentClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &agentJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.AgentClaims{}, err
	}
	claims, ok := parsed.Claims.(*agentJWTClaims)
	if !ok || !parsed.Valid {
		return ports.AgentClaims{}, errors.New("invalid token claims")
	}
	if claims.AgentID == "" {
		return ports.AgentClaims{}, errors.New("token has no agent id")
	}

	return ports.AgentClaims{
		AgentID:       claims.AgentID,
		AgentName:     claims.AgentName,
		AgentCategory: claims.AgentCategory,
		UserAuth:      claims.UserAuth,
	}, nil
}
