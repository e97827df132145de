package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/folio/internal/core/book"
	"github.com/colonyops/folio/internal/core/config"
	"github.com/colonyops/folio/internal/core/flow"
	"github.com/colonyops/folio/internal/source"
	"github.com/colonyops/folio/pkg/iojson"
)

// Default viewports per measure: a terminal screen in cells, a 6x9in page in
// points.
var defaultViewports = map[string]flow.Viewport{
	config.MeasureCells: {Width: 80, Height: 24},
	config.MeasureFont:  {Width: 432, Height: 648},
}

type PaginateCmd struct {
	flags *Flags

	// flags
	width      float64
	height     float64
	measure    string
	listPages  bool
	jsonOutput bool
}

// PaginateReport is the JSON form of a book's page table.
type PaginateReport struct {
	BookID   string            `json:"book_id"`
	Title    string            `json:"title"`
	Measure  string            `json:"measure"`
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	Pages    int               `json:"pages"`
	Sections []PaginateSection `json:"sections"`
}

// PaginateSection is one row of the page table.
type PaginateSection struct {
	Index   int         `json:"index"`
	Title   string      `json:"title"`
	Chars   int         `json:"chars"`
	Pages   int         `json:"pages"`
	Percent float64     `json:"percent"` // share of the book before the section
	Ranges  []PageRange `json:"ranges,omitempty"`
}

// PageRange is the half-open rune range of one page.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewPaginateCmd creates a new paginate command
func NewPaginateCmd(flags *Flags) *PaginateCmd {
	return &PaginateCmd{flags: flags}
}

// Register adds the paginate command to the application
func (cmd *PaginateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "paginate",
		Usage:     "Print the page table of a book",
		UsageText: "folio paginate <path> [--width W --height H --measure cells|font --pages --json]",
		Description: `Lays out every section of a book for one viewport and prints the page
count of each. Width and height are in cells for the cells measure and in
points for the font measure; when omitted a terminal screen or a 6x9in page
is used.`,
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:        "width",
				Usage:       "viewport width",
				Destination: &cmd.width,
			},
			&cli.FloatFlag{
				Name:        "height",
				Usage:       "viewport height",
				Destination: &cmd.height,
			},
			&cli.StringFlag{
				Name:        "measure",
				Usage:       "text measure (cells, font); defaults to reader.measure",
				Destination: &cmd.measure,
			},
			&cli.BoolFlag{
				Name:        "pages",
				Usage:       "list the character range of every page",
				Destination: &cmd.listPages,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PaginateCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected one book path, got %d arguments", c.Args().Len())
	}

	b, err := source.Open(c.Args().First())
	if err != nil {
		return err
	}

	report, err := cmd.paginate(ctx, b)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, report)
	}

	_, _ = fmt.Fprintf(out, "%s: %d pages at %gx%g (%s)\n\n", report.Title, report.Pages, report.Width, report.Height, report.Measure)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tTITLE\tCHARS\tPAGES\tSTART")
	for _, s := range report.Sections {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.1f%%\n", s.Index+1, s.Title, s.Chars, s.Pages, s.Percent*100)
		for i, r := range s.Ranges {
			_, _ = fmt.Fprintf(w, "\t  p%d\t%d-%d\t\t\n", i+1, r.Start, r.End)
		}
	}
	return w.Flush()
}

// paginate lays the whole book out with the configured worker fan-out and
// builds the page table.
func (cmd *PaginateCmd) paginate(ctx context.Context, b *source.Book) (PaginateReport, error) {
	cfg := cmd.flags.Config

	measure := cmd.measure
	if measure == "" {
		measure = cfg.Reader.Measure
	}
	vp, ok := defaultViewports[measure]
	if !ok {
		return PaginateReport{}, fmt.Errorf("unknown measure %q (want %s or %s)", measure, config.MeasureCells, config.MeasureFont)
	}
	if cmd.width > 0 {
		vp.Width = cmd.width
	}
	if cmd.height > 0 {
		vp.Height = cmd.height
	}

	var m flow.Measurer = flow.CellMeasurer{}
	if measure == config.MeasureFont {
		m = flow.NewFontMeasurer(cfg.Reader.DPI)
	}

	d, err := book.NewDisplay(b, book.DisplayOptions{
		Measurer:  m,
		Viewport:  vp,
		Style:     cfg.Style.Flow(),
		CacheSize: cfg.Reader.CacheSize,
	})
	if err != nil {
		return PaginateReport{}, fmt.Errorf("open %s: %w", b.Title(), err)
	}

	if job := d.NewLayoutJob(cfg.Reader.PrefetchWorkers); job != nil {
		res, err := job.Run(ctx)
		if err != nil {
			return PaginateReport{}, fmt.Errorf("paginate %s: %w", b.Title(), err)
		}
		d.Apply(res)
	}

	report := PaginateReport{
		BookID:  b.ID(),
		Title:   b.Title(),
		Measure: measure,
		Width:   vp.Width,
		Height:  vp.Height,
		Pages:   book.PageCount(d),
	}
	for s := range d.SectionCount() {
		row := PaginateSection{
			Index:   s,
			Title:   b.SectionTitle(s),
			Chars:   d.SectionLength(s),
			Pages:   d.SectionPageCount(s),
			Percent: book.StartOfSection(d, s).ToPercent(d),
		}
		if cmd.listPages {
			for _, p := range d.SectionPages(s) {
				row.Ranges = append(row.Ranges, PageRange{Start: p.Start, End: p.End})
			}
		}
		report.Sections = append(report.Sections, row)
	}
	return report, nil
}
