package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/jwtauth/v5"

	"github.com/neomorfeo/devportal/internal/domain"
)

const bearerScheme = "bearer"

// Accounts is the user directory as seen by the HTTP layer.
type Accounts interface {
	domain.UserDirectory
	Register(ctx context.Context, email, name string) error
}

// Identity is what a verified bearer token says about the caller.
type Identity struct {
	Email string
	Name  string
}

type ctxKey int

const (
	identityKey ctxKey = iota
	userKey
)

// Authenticator turns the token verified by jwtauth.Verifier into an
// identity and, where required, a directory user.
type Authenticator struct {
	api      huma.API
	accounts Accounts
}

// NewAuthenticator creates an authenticator that writes errors through api.
func NewAuthenticator(api huma.API, accounts Accounts) *Authenticator {
	return &Authenticator{api: api, accounts: accounts}
}

// RequireToken rejects requests without a valid bearer token carrying an
// email claim.
func (a *Authenticator) RequireToken(ctx huma.Context, next func(huma.Context)) {
	id, err := identityFromToken(ctx.Context())
	if err != nil {
		_ = huma.WriteErr(a.api, ctx, http.StatusUnauthorized, err.Error())
		return
	}
	next(huma.WithValue(ctx, identityKey, id))
}

// RequireUser is RequireToken plus a directory lookup. Callers unknown to
// the directory are told to sign up first.
func (a *Authenticator) RequireUser(ctx huma.Context, next func(huma.Context)) {
	a.RequireToken(ctx, func(ctx huma.Context) {
		id := currentIdentity(ctx.Context())

		user, found, err := a.accounts.FindUser(ctx.Context(), id.Email)
		if err != nil {
			status, msg := statusFor(err)
			_ = huma.WriteErr(a.api, ctx, status, msg)
			return
		}
		if !found {
			_ = huma.WriteErr(a.api, ctx, http.StatusForbidden, domain.ErrAccountNotFound.Message)
			return
		}

		next(huma.WithValue(ctx, userKey, user))
	})
}

// RequireAdmin is RequireUser restricted to administrators.
func (a *Authenticator) RequireAdmin(ctx huma.Context, next func(huma.Context)) {
	a.RequireUser(ctx, func(ctx huma.Context) {
		if !currentUser(ctx.Context()).IsAdmin {
			_ = huma.WriteErr(a.api, ctx, http.StatusForbidden, domain.ErrAdminOnly.Message)
			return
		}
		next(ctx)
	})
}

func identityFromToken(ctx context.Context) (Identity, error) {
	token, _, err := jwtauth.FromContext(ctx)
	if err != nil {
		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			return Identity{}, errors.New("missing bearer token")
		}
		return Identity{}, errors.New("invalid bearer token")
	}
	if token == nil {
		return Identity{}, errors.New("invalid bearer token")
	}

	email, _ := claimString(token.PrivateClaims(), "email")
	if email == "" {
		return Identity{}, errors.New("bearer token has no email claim")
	}
	name, _ := claimString(token.PrivateClaims(), "name")

	return Identity{Email: strings.TrimSpace(email), Name: name}, nil
}

func claimString(claims map[string]any, key string) (string, bool) {
	v, ok := claims[key].(string)
	return v, ok
}

func currentIdentity(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

func currentUser(ctx context.Context) domain.User {
	u, _ := ctx.Value(userKey).(domain.User)
	return u
}
