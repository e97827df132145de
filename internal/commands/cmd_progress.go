package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/folio/internal/core/validate"
	"github.com/colonyops/folio/internal/data/stores"
	"github.com/colonyops/folio/pkg/iojson"
)

type ProgressCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	importFile iojson.FileReader[[]stores.Progress]
}

// NewProgressCmd creates a new progress command
func NewProgressCmd(flags *Flags) *ProgressCmd {
	return &ProgressCmd{flags: flags}
}

// Register adds the progress command to the application
func (cmd *ProgressCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "progress",
		Usage:     "List and manage saved reading positions",
		UsageText: "folio progress [--json]",
		Description: `Lists every book with a saved position, most recently read first.

Use --json for one JSON object per line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "forget",
				Usage:     "Delete the saved position of a book",
				UsageText: "folio progress forget <book-id>",
				Action:    cmd.runForget,
			},
			{
				Name:        "export",
				Usage:       "Write all saved positions as a JSON array",
				UsageText:   "folio progress export > progress.json",
				Description: "Writes every saved position to stdout. Feed the output to 'folio progress import' to restore it.",
				Action:      cmd.runExport,
			},
			{
				Name:        "import",
				Usage:       "Restore saved positions from a JSON array",
				UsageText:   "folio progress import [-f progress.json]",
				Description: "Reads positions written by 'folio progress export' from a file or stdin. Existing positions for the same books are replaced.",
				Flags:       []cli.Flag{cmd.importFile.Flag()},
				Action:      cmd.runImport,
			},
		},
	})

	return app
}

func (cmd *ProgressCmd) withStore(fn func(store *stores.ProgressStore) error) error {
	database, store, err := openProgress(cmd.flags.Config)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()
	return fn(store)
}

func (cmd *ProgressCmd) runList(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() > 0 {
		return fmt.Errorf("unknown command %q. Run 'folio progress --help' for usage", c.Args().First())
	}

	return cmd.withStore(func(store *stores.ProgressStore) error {
		all, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}

		out := c.Root().Writer
		if cmd.jsonOutput {
			for _, p := range all {
				if err := iojson.WriteLine(out, p); err != nil {
					return fmt.Errorf("encode progress: %w", err)
				}
			}
			return nil
		}

		if len(all) == 0 {
			fmt.Fprintf(os.Stderr, "No saved positions\n")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "BOOK\tTITLE\tSECTION\tCHAR\tREAD\tUPDATED")
		for _, p := range all {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f%%\t%s\n",
				p.BookID, p.Title, p.Position.Section+1, p.Position.Char, p.Percent*100,
				p.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	})
}

func (cmd *ProgressCmd) runForget(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if err := validate.BookID(id); err != nil {
		return err
	}

	return cmd.withStore(func(store *stores.ProgressStore) error {
		if err := store.Delete(ctx, id); err != nil {
			if errors.Is(err, stores.ErrNotFound) {
				return fmt.Errorf("no saved position for %s", id)
			}
			return err
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "Forgot %s\n", id)
		return nil
	})
}

func (cmd *ProgressCmd) runExport(ctx context.Context, c *cli.Command) error {
	return cmd.withStore(func(store *stores.ProgressStore) error {
		all, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}
		if all == nil {
			all = []stores.Progress{}
		}
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, all)
	})
}

func (cmd *ProgressCmd) runImport(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.importFile.Read()
	if err != nil {
		return err
	}

	for i, p := range entries {
		if err := validate.BookID(p.BookID); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if p.Position.Section < 0 || p.Position.Char < 0 {
			return fmt.Errorf("entry %d: position %s is negative", i, p.Position)
		}
	}

	return cmd.withStore(func(store *stores.ProgressStore) error {
		for _, p := range entries {
			p.Position.BookID = p.BookID
			if err := store.Save(ctx, p); err != nil {
				return err
			}
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "Imported %d position(s)\n", len(entries))
		return nil
	})
}
