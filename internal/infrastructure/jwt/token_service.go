package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"roadrescue/internal/domain/entity"
)

// Claims is the access token payload: sub, role, iat, exp, jti.
type Claims struct {
	Role entity.Role `json:"role"`
	gojwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) Issue(userID string, role entity.Role) (string, *entity.Principal, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.New().String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return token, &entity.Principal{
		UserID:    userID,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *TokenService) Verify(tokenString string) (*entity.Principal, error) {
	claims := &Claims{}
	parser := gojwt.Parser{ValidMethods: []string{gojwt.SigningMethodHS256.Alg()}}

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(s.now()) {
		return nil, fmt.Errorf("token expired")
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("token missing subject or role")
	}

	return &entity.Principal{
		UserID:    claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
