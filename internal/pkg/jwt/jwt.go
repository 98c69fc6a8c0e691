package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim. A token of one type is
// never accepted where the other is expected.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

type Claims struct {
	TokenType string `json:"token_type"`
	jwtlib.RegisteredClaims
}

// Service signs and verifies HS256 access/refresh tokens. Subject is
// the account UUID; every token carries a fresh jti.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// Generate signs a token of the given type for subject, with lifetime
// anchored at now. Returns the signed string and its claims (the caller
// records the refresh jti in the ledger).
func (s *Service) Generate(typ string, subject uuid.UUID, now time.Time) (string, *Claims, error) {
	ttl := s.accessTTL
	if typ == TypeRefresh {
		ttl = s.refreshTTL
	}

	claims := &Claims{
		TokenType: typ,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature, expiry and token type. All time checks use a
// single now captured at entry, so a token cannot be half-expired within
// one call.
func (s *Service) Parse(tokenStr, typ string) (*Claims, error) {
	now := time.Now()

	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwtlib.Token) (any, error) { return s.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return now }),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != typ {
		return nil, ErrTokenInvalid
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseAny verifies a token of either type (verify endpoint).
func (s *Service) ParseAny(tokenStr string) (*Claims, error) {
	claims, err := s.Parse(tokenStr, TypeAccess)
	if err == nil {
		return claims, nil
	}
	if errors.Is(err, ErrTokenExpired) {
		return nil, err
	}
	return s.Parse(tokenStr, TypeRefresh)
}

// Subject returns the parsed account UUID. Parse has already validated
// the format.
func (c *Claims) UserUUID() uuid.UUID {
	id, _ := uuid.Parse(c.Subject)
	return id
}
