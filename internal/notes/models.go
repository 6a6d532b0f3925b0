package notes

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("note not found")

type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content"`
}

// UpdateNoteRequest carries a partial update; nil fields are left as is.
type UpdateNoteRequest struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=255"`
	Content *string `json:"content"`
}

type BatchRequest struct {
	IDs []int64 `json:"ids" validate:"max=200"`
}
