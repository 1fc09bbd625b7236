package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ownerContextKey struct{}

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// AuthConfig configures validation of tokens issued by the external auth
// service. Only HS256 is accepted.
type AuthConfig struct {
	Secret []byte
	Issuer string // optional; checked when set
}

// Authenticator turns a bearer token into the owner it was issued for.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Authenticator{
		secret: cfg.Secret,
		parser: jwt.NewParser(opts...),
	}
}

// Owner validates tokenString and returns its subject.
func (a *Authenticator) Owner(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := a.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return subject, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// owner in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err == nil {
			var owner string
			if owner, err = a.Owner(tokenString); err == nil {
				next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
				return
			}
		}
		w.Header().Set("WWW-Authenticate", `Bearer realm="saldo"`)
		UnauthorizedError(err.Error()).Write(w)
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, owner)
}

// OwnerFromContext returns the authenticated owner, if any.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerContextKey{}).(string)
	return owner, ok && owner != ""
}
