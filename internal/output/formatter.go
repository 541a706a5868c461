// Package output renders analysis results as text, markdown, JSON, TOON or
// SARIF.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
	FormatSARIF    Format = "sarif"
)

var formatNames = map[string]Format{
	"text":     FormatText,
	"json":     FormatJSON,
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"toon":     FormatTOON,
	"sarif":    FormatSARIF,
}

// ErrUnsupportedFormat is returned for unknown format names and for results
// that cannot be written in the requested format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	if f, ok := formatNames[strings.ToLower(s)]; ok {
		return f
	}
	return FormatText
}

// ValidFormat reports whether s names a known format.
func ValidFormat(s string) bool {
	_, ok := formatNames[strings.ToLower(s)]
	return ok
}

// Renderable is a result that can be written in every format.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData returns the value serialized for JSON and TOON.
	RenderData() any
}

// SARIFRenderable is implemented by results that map onto SARIF results.
type SARIFRenderable interface {
	RenderSARIF(w io.Writer) error
}

// Formatter writes results to stdout or a file.
type Formatter struct {
	format  Format
	w       io.Writer
	closer  io.Closer
	colored bool
}

// NewFormatter creates a formatter. A non-empty path is created and written
// without color.
func NewFormatter(format Format, path string, colored bool) (*Formatter, error) {
	if path == "" {
		return &Formatter{format: format, w: os.Stdout, colored: colored}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &Formatter{format: format, w: f, closer: f}, nil
}

// NewWriterFormatter creates a formatter over an existing writer.
func NewWriterFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, w: w, colored: colored}
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Output writes r in the configured format.
func (f *Formatter) Output(r Renderable) error {
	switch f.format {
	case FormatJSON:
		return WriteJSON(f.w, r.RenderData())
	case FormatTOON:
		out, err := MarshalTOON(r.RenderData())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(f.w, "%s\n", out)
		return err
	case FormatSARIF:
		s, ok := r.(SARIFRenderable)
		if !ok {
			return fmt.Errorf("%w: %s for %T", ErrUnsupportedFormat, f.format, r)
		}
		return s.RenderSARIF(f.w)
	case FormatMarkdown:
		return r.RenderMarkdown(f.w)
	default:
		return r.RenderText(f.w, f.colored)
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// MarshalTOON encodes v as TOON with two-space indentation.
func MarshalTOON(v any) ([]byte, error) {
	out, err := toon.Marshal(v, toon.WithIndent(2))
	if err != nil {
		return nil, fmt.Errorf("marshal toon: %w", err)
	}
	return out, nil
}

func writeHeading(w io.Writer, title string, colored bool) {
	if colored {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
}

// Table is a titled grid of findings, cycles or pairs.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if t.Title != "" {
		writeHeading(w, t.Title, colored)
		fmt.Fprintln(w)
	}

	left := tw.CellAlignment{Global: tw.AlignLeft}
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  left,
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{Alignment: left},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)
	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	writeMarkdownRow(w, t.Headers)
	writeMarkdownRow(w, slices.Repeat([]string{"---"}, len(t.Headers)))
	for _, row := range t.Rows {
		writeMarkdownRow(w, row)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeMarkdownRow(w io.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
}

// Field is one labelled value in a Section.
type Field struct {
	Label string
	Value string
}

// Section is a titled list of labelled values, such as a run summary.
type Section struct {
	Title  string
	Fields []Field
}

func (s *Section) RenderText(w io.Writer, colored bool) error {
	writeHeading(w, s.Title, colored)
	width := 0
	for _, f := range s.Fields {
		width = max(width, len(f.Label)+1)
	}
	for _, f := range s.Fields {
		if _, err := fmt.Fprintf(w, "%-*s %s\n", width, f.Label+":", f.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Section) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## %s\n\n", s.Title)
	for _, f := range s.Fields {
		fmt.Fprintf(w, "- **%s:** %s\n", f.Label, f.Value)
	}
	_, err := fmt.Fprintln(w)
	return err
}
