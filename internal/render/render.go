// Package render turns an invoice into its HTML document.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/angelofallars/hourbill/internal/invoice"
)

// DateLayout is how invoice dates are shown.
const DateLayout = "01/02/2006"

//go:embed templates/*.html
var templates embed.FS

var funcs = template.FuncMap{
	"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"hours": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

var defaultTemplate = template.Must(
	template.New("invoice.html").Funcs(funcs).ParseFS(templates, "templates/invoice.html"),
)

// LoadTemplate parses a replacement invoice template from path. The
// template receives the same data and helper functions as the built-in one.
func LoadTemplate(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	t, err := template.New(filepath.Base(path)).Funcs(funcs).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	return t, nil
}

type Renderer struct {
	tmpl *template.Template
}

// New creates a Renderer using tmpl, or the built-in template when nil.
func New(tmpl *template.Template) *Renderer {
	if tmpl == nil {
		tmpl = defaultTemplate
	}
	return &Renderer{tmpl: tmpl}
}

// Invoice returns the invoice document as a component.
func (r *Renderer) Invoice(inv *invoice.Invoice) templ.Component {
	return Template(r.tmpl, newDocument(inv))
}

// Template adapts an html/template into a component.
func Template(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.Execute(w, data)
	})
}

type document struct {
	Business   invoice.Business
	Client     invoice.Client
	Invoice    details
	Items      []invoice.LineItem
	Subtotal   float64
	Total      float64
	TotalHours float64
}

type details struct {
	Number  string
	Date    string
	DueDate string
	Notes   string
}

func newDocument(inv *invoice.Invoice) document {
	return document{
		Business: inv.Business,
		Client:   inv.Client,
		Invoice: details{
			Number:  inv.Details.Number,
			Date:    formatDate(inv.Details.Date),
			DueDate: formatDate(inv.Details.DueDate),
			Notes:   inv.Details.Notes,
		},
		Items:      inv.Items,
		Subtotal:   inv.Subtotal(),
		Total:      inv.Total(),
		TotalHours: inv.TotalHours(),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// WriteFile renders c fully in memory, then replaces path with the result.
// A failed render leaves any existing file untouched.
func WriteFile(ctx context.Context, path string, c templ.Component) error {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".invoice-*.html.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write invoice: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close invoice: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod invoice: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move invoice into place: %w", err)
	}
	return nil
}
