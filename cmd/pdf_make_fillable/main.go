package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
	"github.com/cookiescgov/docuseal-to-pdf/internal/logging"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/engine"
	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/extraction"
)

const defaultSuffix = "-fillable"

// options are the parsed command line flags
type options struct {
	schemaPath string
	outPath    string
	format     string
	verify     bool
	verbose    bool
	help       bool
	input      string
}

// MakeFillableResult is what the tool prints
type MakeFillableResult struct {
	Input          string              `json:"input"`
	Output         string              `json:"output,omitempty"`
	Success        bool                `json:"success"`
	PageCount      int                 `json:"page_count"`
	FieldsCreated  int                 `json:"fields_created"`
	WidgetsPlaced  int                 `json:"widgets_placed"`
	Skipped        []SkippedArea       `json:"skipped,omitempty"`
	Verified       *extraction.Summary `json:"verified,omitempty"`
	Error          string              `json:"error,omitempty"`
	ProcessingTime string              `json:"processing_time,omitempty"`
}

// SkippedArea is one area that produced no widget
type SkippedArea struct {
	Field  string `json:"field"`
	Area   int    `json:"area"`
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if opts.help {
		printHelp(os.Stdout)
		return
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	result := run(opts, logger)

	if err := outputResult(os.Stdout, opts.format, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
		os.Exit(1)
	}
	if !result.Success {
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	fs := pflag.NewFlagSet("pdf_make_fillable", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := &options{}
	fs.StringVarP(&opts.schemaPath, "schema", "s", "", "Field schema file (.json, .yaml or .yml)")
	fs.StringVarP(&opts.outPath, "out", "o", "", "Output PDF path (default <input>"+defaultSuffix+".pdf)")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.BoolVar(&opts.verify, "verify", false, "Read the generated form back and report what it contains")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.help {
		return opts, nil
	}

	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("unsupported output format: %s", opts.format)
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("exactly one input PDF is required")
	}
	if opts.schemaPath == "" {
		return nil, fmt.Errorf("--schema is required")
	}

	opts.input = fs.Arg(0)
	if opts.outPath == "" {
		opts.outPath = defaultOutputPath(opts.input)
	}
	return opts, nil
}

// defaultOutputPath puts <name>-fillable.pdf next to the input
func defaultOutputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultSuffix + ".pdf"
}

func run(opts *options, logger *zap.Logger) *MakeFillableResult {
	start := time.Now()
	result := &MakeFillableResult{Input: opts.input}

	fail := func(err error) *MakeFillableResult {
		result.Error = err.Error()
		result.ProcessingTime = time.Since(start).String()
		return result
	}

	fields, err := fillable.LoadFieldsFile(opts.schemaPath)
	if err != nil {
		return fail(err)
	}

	data, err := os.ReadFile(opts.input)
	if err != nil {
		return fail(fmt.Errorf("read input: %w", err))
	}

	synth := fillable.NewSynthesizer(engine.NewEngine(), logger.Named("synthesizer"))
	res, err := synth.Synthesize(data, fields)
	if err != nil {
		return fail(err)
	}

	if err := os.WriteFile(opts.outPath, res.PDF, 0o644); err != nil {
		return fail(fmt.Errorf("write output: %w", err))
	}

	result.Success = true
	result.Output = opts.outPath
	result.PageCount = res.PageCount
	result.FieldsCreated = res.FieldsCreated
	result.WidgetsPlaced = res.WidgetsPlaced
	result.Skipped = skippedAreas(res.Skipped)

	if opts.verify {
		extracted, err := extraction.NewPDFCPUFormExtractor(logger.Named("extraction")).ExtractFormsFromBytes(res.PDF)
		if err != nil {
			return fail(fmt.Errorf("verify output: %w", err))
		}
		summary := extraction.Summarize(extracted)
		result.Verified = &summary
	}

	result.ProcessingTime = time.Since(start).String()
	return result
}

func skippedAreas(c *pdferrors.ErrorCollection) []SkippedArea {
	if c == nil {
		return nil
	}
	var out []SkippedArea
	for _, e := range c.All() {
		out = append(out, SkippedArea{
			Field:  e.FieldName,
			Area:   e.AreaIndex,
			Page:   e.PageNumber,
			Reason: e.Type.String(),
		})
	}
	return out
}

func outputResult(w io.Writer, format string, result *MakeFillableResult) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		return outputText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputText(w io.Writer, result *MakeFillableResult) error {
	if !result.Success {
		_, err := fmt.Fprintf(w, "Failed to make %s fillable: %s\n", result.Input, result.Error)
		return err
	}

	fmt.Fprintf(w, "Wrote %s\n", result.Output)
	fmt.Fprintf(w, "  Pages:   %d\n", result.PageCount)
	fmt.Fprintf(w, "  Fields:  %d\n", result.FieldsCreated)
	fmt.Fprintf(w, "  Widgets: %d\n", result.WidgetsPlaced)

	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "  Skipped: %d\n", len(result.Skipped))
		for _, s := range result.Skipped {
			if s.Area < 0 {
				fmt.Fprintf(w, "    - %s: %s\n", s.Field, s.Reason)
			} else {
				fmt.Fprintf(w, "    - %s area %d (page %d): %s\n", s.Field, s.Area, s.Page, s.Reason)
			}
		}
	}

	if result.Verified != nil {
		fmt.Fprintf(w, "  Verified: %d fields, %d widgets\n", result.Verified.Fields, result.Verified.Widgets)
	}

	_, err := fmt.Fprintf(w, "  Time:    %s\n", result.ProcessingTime)
	return err
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "pdf_make_fillable - add form fields to a static PDF from a field schema")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "  -s, --schema    Field schema file (.json, .yaml or .yml)")
	fmt.Fprintln(w, "  -o, --out       Output PDF path (default <input>"+defaultSuffix+".pdf)")
	fmt.Fprintln(w, "      --format    Output format: text (default), json")
	fmt.Fprintln(w, "      --verify    Read the generated form back and report it")
	fmt.Fprintln(w, "  -v, --verbose   Enable debug logging")
	fmt.Fprintln(w, "  -h, --help      Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SCHEMA:")
	fmt.Fprintln(w, "  A list of fields (or {\"fields\": [...]}), each with uuid, name, type and areas.")
	fmt.Fprintln(w, "  Areas hold page (zero-based) and x, y, w, h as fractions of the page,")
	fmt.Fprintln(w, "  measured from the top-left corner. Radio areas may carry option_uuid.")
	fmt.Fprintln(w, "  text, date and number become text fields; checkbox and radio become buttons;")
	fmt.Fprintln(w, "  other types are reported as skipped.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  pdf_make_fillable --schema fields.json contract.pdf")
	fmt.Fprintln(w, "  pdf_make_fillable -s fields.yaml -o out/filled.pdf --format json --verify contract.pdf")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  pdf_make_fillable --schema <schema> [OPTIONS] <pdf_file>")
}
