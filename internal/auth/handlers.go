package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"example.com/note-keeper/internal/httpx"
	"example.com/note-keeper/internal/users"
)

// Accounts is the account service behind the /auth endpoints.
type Accounts interface {
	Signup(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type Handlers struct {
	accounts Accounts
	gate     *Gate
	logger   *slog.Logger
}

func NewHandlers(accounts Accounts, gate *Gate, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{accounts: accounts, gate: gate, logger: logger}
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type MeResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.With(h.gate.Require).Get("/me", h.me)

	return r
}

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.Message(err))
		return
	}

	tok, err := h.accounts.Signup(r.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrAlreadyExists) {
		httpx.WriteError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		h.internal(w, r, "signup", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, TokenResponse{Token: tok})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.Message(err))
		return
	}

	tok, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.internal(w, r, "login", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{Token: tok})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MeResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt})
}

func (h *Handlers) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op+" failed", slog.Any("err", err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal error")
}
