package security

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	jwxt "github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenTTL is the fixed validity of an issued bearer token.
const TokenTTL = 30 * 24 * time.Hour

const bearerPrefix = "Bearer "

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("token signing secret is empty")
)

// TokenIssuer mints and verifies HS256 bearer tokens carrying a user_id claim.
// Tokens are stateless; expiry is the only invalidation.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	now  func() time.Time
}

type TokenOption func(*TokenIssuer)

// WithClock overrides the wall clock used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(ti *TokenIssuer) {
		ti.now = now
	}
}

func NewTokenIssuer(secret []byte, opts ...TokenOption) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	ti := &TokenIssuer{now: time.Now}
	for _, opt := range opts {
		opt(ti)
	}
	ti.auth = jwtauth.New("HS256", secret, nil, jwxt.WithClock(jwxt.ClockFunc(ti.now)))
	return ti, nil
}

func (ti *TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot issue token without user id")
	}
	now := ti.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(), // distinct tokens within the same second
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(TokenTTL))

	_, tokenString, err := ti.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and returns the embedded user ID.
// Every failure wraps ErrInvalidToken.
func (ti *TokenIssuer) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	token, err := jwtauth.VerifyToken(ti.auth, tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID, err := GetUserIDFromClaims(token.PrivateClaims())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return userID, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

// TokenFromHeader returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is absent or uses another scheme.
func TokenFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
