package commands

import (
	"context"
	"errors"
	"io"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/folio/internal/core/config"
	"github.com/colonyops/folio/pkg/iojson"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6da95"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#eed49f"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ed8796"))
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// ValidationError is one failed field check.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationReport is the JSON form of a validation run.
type ValidationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []ValidationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "folio config validate [options]",
				Description: "Validates the configuration file, checking colours, typefaces, the theme name and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	report := buildValidationReport(cmd.flags.Config, cmd.flags.ConfigPath)
	out := c.Root().Writer

	if cmd.format == "json" {
		if err := iojson.WriteWith(out, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		writeValidationText(out, report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func buildValidationReport(cfg *config.Config, configPath string) ValidationReport {
	report := ValidationReport{Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		report.Valid = true
		return report
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			report.Errors = append(report.Errors, ValidationError{Field: fe.Field, Message: fe.Err.Error()})
		}
	} else {
		report.Errors = append(report.Errors, ValidationError{Message: err.Error()})
	}
	return report
}

// writeValidationText prints the report; colour is dropped when w is not a
// terminal.
func writeValidationText(w io.Writer, report ValidationReport) {
	for _, warn := range report.Warnings {
		_, _ = lipgloss.Fprintf(w, "%s %s: %s\n", warnStyle.Render("!"), warn.Category, warn.Message)
		if warn.Item != "" {
			_, _ = lipgloss.Fprintf(w, "  Item: %s\n", warn.Item)
		}
	}

	for _, e := range report.Errors {
		if e.Field != "" {
			_, _ = lipgloss.Fprintf(w, "%s %s: %s\n", errStyle.Render("✗"), e.Field, e.Message)
		} else {
			_, _ = lipgloss.Fprintf(w, "%s %s\n", errStyle.Render("✗"), e.Message)
		}
	}

	_, _ = lipgloss.Fprintln(w)
	if report.Valid {
		_, _ = lipgloss.Fprintf(w, "%s Configuration is valid\n", okStyle.Render("✓"))
		return
	}
	_, _ = lipgloss.Fprintf(w, "%s %d error(s) found\n", errStyle.Render("✗"), len(report.Errors))
}
