package notes

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

const noteCols = `id, user_id, title, content, created_at, updated_at`

type Repository struct {
	db *sql.DB

	stmtGet    *sql.Stmt
	stmtUpdate *sql.Stmt
	stmtDelete *sql.Stmt
}

func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	get, err := db.PrepareContext(ctx, `
		SELECT `+noteCols+`
		FROM notes
		WHERE id = $1 AND user_id = $2
	`)
	if err != nil {
		return nil, err
	}

	upd, err := db.PrepareContext(ctx, `
		UPDATE notes
		SET title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteCols)
	if err != nil {
		_ = get.Close()
		return nil, err
	}

	del, err := db.PrepareContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`)
	if err != nil {
		_ = get.Close()
		_ = upd.Close()
		return nil, err
	}

	return &Repository{
		db:         db,
		stmtGet:    get,
		stmtUpdate: upd,
		stmtDelete: del,
	}, nil
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtGet, r.stmtUpdate, r.stmtDelete} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, userID int64, title, content string) (Note, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO notes (user_id, title, content) VALUES ($1, $2, $3)
		RETURNING `+noteCols, userID, title, content)
	return scanNote(row)
}

// Get returns ErrNotFound both for missing notes and for notes owned by
// someone else.
func (r *Repository) Get(ctx context.Context, userID, id int64) (Note, error) {
	return scanNote(r.stmtGet.QueryRowContext(ctx, id, userID))
}

// Update changes only the non-nil fields and always bumps updated_at.
func (r *Repository) Update(ctx context.Context, userID, id int64, title, content *string) (Note, error) {
	return scanNote(r.stmtUpdate.QueryRowContext(ctx, id, userID, title, content))
}

func (r *Repository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.stmtDelete.ExecContext(ctx, id, userID)
	if err != nil {
		return err
	}
	a, _ := res.RowsAffected()
	if a == 0 {
		return ErrNotFound
	}
	return nil
}

type ListParams struct {
	UserID int64
	Query  string

	// Limit <= 0 returns every matching note.
	Limit           int
	CursorUpdatedAt *time.Time
	CursorID        *int64
}

const maxLimit = 200

// List returns the owner's notes, most recently updated first.
func (r *Repository) List(ctx context.Context, p ListParams) ([]Note, error) {
	q := `SELECT ` + noteCols + ` FROM notes WHERE user_id = $1`
	args := []any{p.UserID}

	// Title search
	if p.Query != "" {
		args = append(args, "%"+escapeLike(p.Query)+"%")
		q += ` AND title ILIKE $` + strconv.Itoa(len(args))
	}

	// Keyset pagination
	if p.CursorUpdatedAt != nil && p.CursorID != nil {
		args = append(args, *p.CursorUpdatedAt, *p.CursorID)
		q += ` AND (updated_at, id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	q += ` ORDER BY updated_at DESC, id DESC`

	if p.Limit > 0 {
		if p.Limit > maxLimit {
			p.Limit = maxLimit
		}
		args = append(args, p.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotes(rows)
}

// BatchGet: one query for many ids, restricted to the owner.
func (r *Repository) BatchGet(ctx context.Context, userID int64, ids []int64) ([]Note, error) {
	if len(ids) == 0 {
		return []Note{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+noteCols+`
		FROM notes
		WHERE user_id = $1 AND id = ANY($2)
		ORDER BY updated_at DESC, id DESC
	`, userID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotes(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanNote(row *sql.Row) (Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, err
	}
	return n, nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	out := make([]Note, 0, 32)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
