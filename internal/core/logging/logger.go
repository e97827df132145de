package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Field names shared by component loggers and ContextHook.
const (
	componentField = "cmp"
	bookIDField    = "book_id"
	screenIDField  = "screen_id"
)

// Component returns a child of the global logger tagged with name under the
// "cmp" key. The global logger is read at call time, so loggers created
// before main configures logging stay on the zerolog default.
func Component(name string) zerolog.Logger {
	return log.With().Str(componentField, name).Logger()
}

// BookComponent is Component with the book id attached, for long-lived
// per-book values that log without a request context.
func BookComponent(name, bookID string) zerolog.Logger {
	l := Component(name)
	if bookID == "" {
		return l
	}
	return l.With().Str(bookIDField, bookID).Logger()
}
