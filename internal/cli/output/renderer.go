package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	mode   Mode
	tty    bool
	styles *Styles
}

// NewRenderer creates a renderer. An empty mode means ModeAuto.
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	tty := isTerminal(w)
	return &Renderer{
		w:      w,
		errW:   errW,
		mode:   Mode(strings.ToLower(string(mode))),
		tty:    tty,
		styles: newStyles(w, tty),
	}
}

// EffectiveMode resolves ModeAuto against the output destination.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.tty {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.tty
}

// Writer returns the main output writer.
func (r *Renderer) Writer() io.Writer {
	return r.w
}

// ErrWriter returns the writer for status messages.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errW
}

// Styles returns the text styles.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Println writes a line to the main output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted output to the main output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Header writes a top-level heading.
func (r *Renderer) Header(title string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Printf("# %s\n\n", title)
		return
	}
	r.Println(r.styles.Header1.Render(title))
	r.Println("")
}

// Section writes a second-level heading.
func (r *Renderer) Section(title string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Printf("## %s\n\n", title)
		return
	}
	r.Println(r.styles.Header2.Render(title))
}

// Success writes a success status line to the error stream.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Success.Render("✓ "+msg))
}

// Warning writes a warning status line to the error stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Warning.Render("! "+msg))
}

// Error writes an error status line to the error stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Error.Render("✗ "+msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Structured writes v when the effective mode is JSON or YAML and reports
// whether it did so.
func (r *Renderer) Structured(v any) (bool, error) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return true, r.JSON(v)
	case ModeYAML:
		return true, r.YAML(v)
	default:
		return false, nil
	}
}

// Table writes rows under a header: a light box table for text, a pipe table for markdown.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// Tree writes a tree rooted at root.
func (r *Renderer) Tree(root *gtree.Node) error {
	return gtree.OutputFromRoot(r.w, root)
}

var titleCaser = cases.Title(language.English)

// Title capitalizes each word, e.g. "relationships" -> "Relationships".
func Title(s string) string {
	return titleCaser.String(s)
}
