package commands

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/folio/internal/core/config"
	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/core/logging"
	"github.com/colonyops/folio/internal/reader"
	"github.com/colonyops/folio/internal/source"
	"github.com/colonyops/folio/internal/tui"
	"github.com/colonyops/folio/pkg/profiler"
	"github.com/colonyops/folio/pkg/utils"
)

type ReadCmd struct {
	flags *Flags
}

// NewReadCmd creates a new read command
func NewReadCmd(flags *Flags) *ReadCmd {
	return &ReadCmd{flags: flags}
}

// Flags returns the reader flags for registration on the root command
func (cmd *ReadCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("FOLIO_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Register adds the read command to the application
func (cmd *ReadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "read",
		Usage:     "Open a book in the terminal reader",
		UsageText: "folio read <path>",
		Description: `Opens a text, markdown or HTML file (or a directory of them) and resumes
at the saved position. Progress is saved on every page change.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})

	return app
}

// Run executes the reader. Exported for use as the default command.
func (cmd *ReadCmd) Run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected one book path, got %d arguments", c.Args().Len())
	}
	cfg := cmd.flags.Config

	// Anything worth telling the user is held until the alternate screen is gone.
	notes := &utils.DeferredWriter{}
	defer func() { _ = notes.Flush(c.Root().ErrWriter) }()
	for _, w := range cfg.Warnings() {
		notes.Printf("config %s: %s", w.Category, w.Message)
	}

	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		notes.Printf("profiler was available at http://%s/debug/pprof/", profServer.Addr())
	}

	book, err := source.Open(c.Args().First())
	if err != nil {
		return err
	}
	ctx = logging.WithBookID(ctx, book.ID())

	database, store, err := openProgress(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if cfg.Reader.Measure == config.MeasureFont {
		notes.Printf("note: reader.measure font applies to 'folio paginate'; the terminal reader lays out in cells")
	}

	watcher := reader.NewConfigWatcher(cmd.flags.ConfigPath, cfg.DataDir)
	if watcher != nil {
		defer func() { _ = watcher.Close() }()
	}

	m, err := tui.New(ctx, book, store, tui.Options{
		Config:   cfg,
		Measurer: flow.CellMeasurer{},
		Watcher:  watcher,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", book.Title(), err)
	}

	finalModel, err := tea.NewProgram(m).Run()
	if final, ok := finalModel.(tui.Model); ok {
		final.Close()
	} else {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	log.Info().Ctx(ctx).Str("title", book.Title()).Msg("reader closed")
	return nil
}
