package logging

import (
	"github.com/rs/zerolog"
)

// ContextHook stamps the open book and the reader screen on events logged
// with .Ctx(ctx), so a session's lines can be picked out of folio.log.
// Install it on the root logger once; component loggers inherit it.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	for _, f := range []struct{ name, value string }{
		{bookIDField, GetBookID(ctx)},
		{screenIDField, GetScreenID(ctx)},
	} {
		if f.value != "" {
			e.Str(f.name, f.value)
		}
	}
}
