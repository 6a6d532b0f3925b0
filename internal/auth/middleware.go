package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"example.com/note-keeper/internal/httpx"
	"example.com/note-keeper/internal/security"
	"example.com/note-keeper/internal/users"
)

const bearerPrefix = "Bearer "

type TokenVerifier interface {
	Verify(token string) (security.Identity, error)
}

type UserLookup interface {
	ByID(ctx context.Context, id int64) (users.User, error)
}

// Gate resolves bearer tokens to users for the handlers it wraps.
type Gate struct {
	tokens TokenVerifier
	users  UserLookup
	logger *slog.Logger
}

func NewGate(tokens TokenVerifier, lookup UserLookup, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{tokens: tokens, users: lookup, logger: logger}
}

// Require rejects requests without a valid bearer token for an existing
// user with 401 and otherwise passes the user to next through the context.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			g.reject(w, r, "missing or invalid authorization header", nil)
			return
		}

		ident, err := g.tokens.Verify(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			g.reject(w, r, "invalid or expired token", err)
			return
		}

		u, err := g.users.ByID(r.Context(), ident.UserID)
		if errors.Is(err, users.ErrNotFound) {
			g.reject(w, r, "user not found", err)
			return
		}
		if err != nil {
			g.logger.ErrorContext(r.Context(), "resolve token user", slog.Int64("user_id", ident.UserID), slog.Any("err", err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	attrs := []any{slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.Any("err", err))
	}
	g.logger.DebugContext(r.Context(), "unauthenticated request", attrs...)
	httpx.WriteError(w, http.StatusUnauthorized, reason)
}
