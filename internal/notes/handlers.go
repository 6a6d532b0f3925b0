package notes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"example.com/note-keeper/internal/auth"
	"example.com/note-keeper/internal/httpx"
	"example.com/note-keeper/internal/stringsx"
)

type Handlers struct {
	store  Store
	logger *slog.Logger
}

// Store is an abstraction over the notes storage.
// It allows unit-testing handlers without a real database.
type Store interface {
	Create(ctx context.Context, userID int64, title, content string) (Note, error)
	Get(ctx context.Context, userID, id int64) (Note, error)
	Update(ctx context.Context, userID, id int64, title, content *string) (Note, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, p ListParams) ([]Note, error)
	BatchGet(ctx context.Context, userID int64, ids []int64) ([]Note, error)
}

func NewHandlers(store Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, logger: logger}
}

// Routes expects to be mounted behind auth.Gate.Require.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/batch", h.batch)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Delete("/", h.delete)
	})

	return r
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.Message(err))
		return
	}
	if stringsx.IsBlank(req.Title) {
		httpx.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	n, err := h.store.Create(r.Context(), uid, req.Title, req.Content)
	if err != nil {
		h.internal(w, r, "create note", err)
		return
	}
	h.logger.DebugContext(r.Context(), "note created", slog.Int64("user_id", uid), slog.Int64("note_id", n.ID))
	httpx.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	n, err := h.store.Get(r.Context(), uid, id)
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		h.internal(w, r, "get note", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, n)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.Message(err))
		return
	}
	if req.Title != nil && stringsx.IsBlank(*req.Title) {
		httpx.WriteError(w, http.StatusBadRequest, "title must not be blank")
		return
	}

	n, err := h.store.Update(r.Context(), uid, id, req.Title, req.Content)
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		h.internal(w, r, "update note", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, n)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), uid, id); errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "note not found")
		return
	} else if err != nil {
		h.internal(w, r, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// list answers with a plain array unless a limit is given, in which case the
// page is wrapped together with the next cursor.
func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}

	p := ListParams{UserID: uid, Query: r.URL.Query().Get("q")}

	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			p.Limit = v
		}
	}
	if s := r.URL.Query().Get("cursor_updated_at"); s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			p.CursorUpdatedAt = &t
		}
	}
	if s := r.URL.Query().Get("cursor_id"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			p.CursorID = &v
		}
	}

	items, err := h.store.List(r.Context(), p)
	if err != nil {
		h.internal(w, r, "list notes", err)
		return
	}

	if p.Limit == 0 {
		httpx.WriteJSON(w, http.StatusOK, items)
		return
	}

	resp := map[string]any{"items": items}
	if len(items) > 0 {
		last := items[len(items)-1]
		resp["next_cursor_updated_at"] = last.UpdatedAt.Format(time.RFC3339Nano)
		resp["next_cursor_id"] = last.ID
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) batch(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req BatchRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.Message(err))
		return
	}

	items, err := h.store.BatchGet(r.Context(), uid, req.IDs)
	if err != nil {
		h.internal(w, r, "batch get notes", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) owner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	u, ok := auth.CurrentUser(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return 0, false
	}
	return u.ID, true
}

func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op+" failed", slog.Any("err", err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal error")
}
