package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/source"
)

// errInvalid signals that at least one document failed; the failures have
// already been printed.
var errInvalid = errors.New("validation failed")

type validateOptions struct {
	schema      string
	format      string
	output      bool
	diff        bool
	concurrency int
}

// report is the outcome for a single document.
type report struct {
	path   string
	input  any
	result lightschema.Result[any, lightschema.Errors]
	err    error
}

func newValidateCmd(a *app) *cobra.Command {
	o := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate --schema FILE DOC...",
		Short: "Validate documents against a schema",
		Long: `Parses every DOC (JSON, YAML or MessagePack by extension, "-" for stdin)
against the schema and prints the failures. Exits with status 1 when any
document fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.Context(), cmd.InOrStdin(), o, args)
		},
	}
	cmd.Flags().StringVarP(&o.schema, "schema", "s", "", "Schema definition file (YAML or JSON)")
	cmd.Flags().StringVar(&o.format, "format", "json", "Format of documents read from stdin")
	cmd.Flags().BoolVarP(&o.output, "output", "o", false, "Print the parsed value of valid documents as JSON")
	cmd.Flags().BoolVar(&o.diff, "diff", false, "Show how parsing changed valid documents")
	cmd.Flags().IntVarP(&o.concurrency, "concurrency", "j", runtime.NumCPU(), "Documents validated in parallel")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func (a *app) runValidate(ctx context.Context, stdin io.Reader, o *validateOptions, docs []string) error {
	schema, err := a.loadSchema(ctx, o.schema)
	if err != nil {
		return err
	}

	reports := make([]report, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, path := range docs {
		g.Go(func() error {
			reports[i] = a.check(gctx, schema, stdin, o.format, path)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if !a.print(r, o) {
			failed++
		}
	}
	a.logger.Debug("validation finished", "documents", len(reports), "failed", failed)
	if failed > 0 {
		return errInvalid
	}
	return nil
}

func (a *app) check(ctx context.Context, s lightschema.Schema, stdin io.Reader, format, path string) report {
	rep := report{path: path}
	var src lightschema.Source
	if path == "-" {
		src, rep.err = source.ForFormat(format, stdin)
	} else {
		src, rep.err = source.File(path)
	}
	if rep.err != nil {
		return rep
	}
	rep.input, rep.err = src.Decode(ctx)
	if rep.err != nil {
		rep.err = fmt.Errorf("decode %s: %w", src.Format(), rep.err)
		return rep
	}
	rep.result = lightschema.Parse(s, rep.input)
	a.logger.Debug("document checked", "path", path, "valid", rep.result.IsSuccess())
	return rep
}

// print writes the report and reports whether the document was valid.
func (a *app) print(r report, o *validateOptions) bool {
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	good := color.New(color.FgGreen, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if r.err != nil {
		fmt.Fprintf(a.out, "%s %s: %v\n", bad("ERROR"), r.path, r.err)
		return false
	}
	value, ok := r.result.Get()
	if !ok {
		fmt.Fprintf(a.out, "%s %s\n", bad("FAIL"), r.path)
		for _, it := range r.result.ExpectFailure().Issues() {
			fmt.Fprintf(a.out, "  %s %s\n", dim(it.Path), it.Message)
		}
		return false
	}
	fmt.Fprintf(a.out, "%s %s\n", good("OK"), r.path)
	if o.output {
		fmt.Fprintln(a.out, indentJSON(value))
	}
	if o.diff {
		fmt.Fprint(a.out, renderDiff(indentJSON(r.input), indentJSON(value)))
	}
	return true
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// renderDiff shows a line diff between the decoded input and the parsed
// value, prefixing removed lines with "-" and added lines with "+".
func renderDiff(from, to string) string {
	if from == to {
		return ""
	}
	from, to = from+"\n", to+"\n"
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	del := color.New(color.FgRed).SprintFunc()
	ins := color.New(color.FgGreen).SprintFunc()
	var buf bytes.Buffer
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffpatch.DiffDelete:
				fmt.Fprintln(&buf, del("- "+line))
			case diffpatch.DiffInsert:
				fmt.Fprintln(&buf, ins("+ "+line))
			default:
				fmt.Fprintln(&buf, "  "+line)
			}
		}
	}
	return buf.String()
}
