package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/i18n"
	"github.com/dcdncp/lightschema/schemafile"
)

// app carries state shared by subcommands.
type app struct {
	out, errOut io.Writer
	logger      *slog.Logger

	lang    string
	verbose bool
	noColor bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:   "lightschema",
		Short: "Validate and transform documents against declarative schemas",
		Long: `lightschema checks JSON, YAML and MessagePack documents against a schema
defined in a YAML or JSON schema file, exports the schema as JSON Schema and
serves it over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVar(&a.lang, "lang", "en", "Language of default failure messages (en, ja)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newValidateCmd(a), newJSONSchemaCmd(a), newServeCmd(a))
	return root
}

func (a *app) setup() {
	i18n.SetLanguage(a.lang)

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	color.NoColor = a.noColor || !isTerminal(a.out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) loadSchema(ctx context.Context, path string) (lightschema.Schema, error) {
	s, err := schemafile.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("schema loaded", "path", path, "kind", s.Kind().String())
	return s, nil
}
