package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/logging"
	"github.com/colonyops/folio/internal/data/db"
)

// ErrNotFound is returned by Load when no progress is saved for a book.
var ErrNotFound = fmt.Errorf("progress not found: %w", sql.ErrNoRows)

// Progress is the last committed reading position of one book.
type Progress struct {
	BookID    string        `json:"book_id"`
	Title     string        `json:"title"`
	Position  book.Position `json:"position"`
	Percent   float64       `json:"percent"`
	Style     flow.Style    `json:"style"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ProgressStore persists reading progress in SQLite.
type ProgressStore struct {
	db  *db.DB
	now func() time.Time
}

// NewProgressStore creates a new SQLite-backed progress store.
func NewProgressStore(db *db.DB) *ProgressStore {
	return &ProgressStore{db: db, now: time.Now}
}

// Save upserts p, stamping a zero UpdatedAt with the current time.
// SQLITE_BUSY is retried briefly: the reader saves from a listener while the
// CLI may be listing.
func (s *ProgressStore) Save(ctx context.Context, p Progress) error {
	if p.BookID == "" {
		return fmt.Errorf("save progress: empty book id")
	}

	style, err := json.Marshal(p.Style)
	if err != nil {
		return fmt.Errorf("save progress %q marshal style: %w", p.BookID, err)
	}

	at := p.UpdatedAt
	if at.IsZero() {
		at = s.now()
	}
	updated := at.UnixNano()

	err = retry.Do(
		func() error {
			_, err := s.db.Conn().ExecContext(ctx, `
				INSERT INTO reading_progress (book_id, title, section, char_index, percent, style, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (book_id) DO UPDATE SET
					title = excluded.title,
					section = excluded.section,
					char_index = excluded.char_index,
					percent = excluded.percent,
					style = excluded.style,
					updated_at = excluded.updated_at`,
				p.BookID, p.Title, p.Position.Section, p.Position.Char, p.Percent, string(style), updated,
			)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(20*time.Millisecond),
		retry.RetryIf(IsBusyError),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("save progress %q: %w", p.BookID, err)
	}

	logging.Component("stores").Debug().
		Str("book_id", p.BookID).
		Stringer("position", p.Position).
		Msg("progress saved")
	return nil
}

// Load returns the saved progress for bookID or ErrNotFound.
func (s *ProgressStore) Load(ctx context.Context, bookID string) (Progress, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT book_id, title, section, char_index, percent, style, updated_at
		FROM reading_progress WHERE book_id = ?`, bookID)

	p, err := scanProgress(row)
	if IsNotFoundError(err) {
		return Progress{}, ErrNotFound
	}
	if err != nil {
		return Progress{}, fmt.Errorf("load progress %q: %w", bookID, err)
	}
	return p, nil
}

// List returns every saved progress record, most recently updated first.
func (s *ProgressStore) List(ctx context.Context) ([]Progress, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT book_id, title, section, char_index, percent, style, updated_at
		FROM reading_progress ORDER BY updated_at DESC, book_id`)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("list progress: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return out, nil
}

// Delete removes the saved progress for bookID. Deleting a book with no
// saved progress returns ErrNotFound.
func (s *ProgressStore) Delete(ctx context.Context, bookID string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM reading_progress WHERE book_id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete progress %q: %w", bookID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete progress %q: %w", bookID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (Progress, error) {
	var (
		p       Progress
		style   string
		updated int64
	)
	err := row.Scan(&p.BookID, &p.Title, &p.Position.Section, &p.Position.Char, &p.Percent, &style, &updated)
	if err != nil {
		return Progress{}, err
	}

	if err := json.Unmarshal([]byte(style), &p.Style); err != nil {
		return Progress{}, fmt.Errorf("unmarshal style: %w", err)
	}

	p.Position.BookID = p.BookID
	p.UpdatedAt = time.Unix(0, updated)
	return p, nil
}
