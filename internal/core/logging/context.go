package logging

import "context"

type contextKey string

const (
	bookIDKey   contextKey = "book_id"
	screenIDKey contextKey = "screen_id"
)

// WithBookID adds a book ID to the context.
func WithBookID(ctx context.Context, bookID string) context.Context {
	return context.WithValue(ctx, bookIDKey, bookID)
}

// WithScreenID adds a reading screen ID to the context.
func WithScreenID(ctx context.Context, screenID string) context.Context {
	return context.WithValue(ctx, screenIDKey, screenID)
}

// GetBookID retrieves the book ID from the context.
// Returns empty string if not present.
func GetBookID(ctx context.Context) string {
	if id, ok := ctx.Value(bookIDKey).(string); ok {
		return id
	}
	return ""
}

// GetScreenID retrieves the reading screen ID from the context.
// Returns empty string if not present.
func GetScreenID(ctx context.Context) string {
	if id, ok := ctx.Value(screenIDKey).(string); ok {
		return id
	}
	return ""
}
