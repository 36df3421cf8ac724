package page

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/zrbsprite/cell"
	"github.com/zrbsprite/cell/drivers/dom"
)

// reloadScript reloads the page when the preview server announces a change.
const reloadScript = `new EventSource(%q).addEventListener("reload", function () { location.reload(); });`

type mountOptions struct {
	log     zerolog.Logger
	metrics *cell.Metrics
	nucleus *cell.Nucleus
	events  string
}

type Option func(*mountOptions)

func WithLogger(l zerolog.Logger) Option {
	return func(o *mountOptions) {
		o.log = l
	}
}

// WithMetrics records the Nucleus activity of fresh mounts in m.
func WithMetrics(m *cell.Metrics) Option {
	return func(o *mountOptions) {
		o.metrics = m
	}
}

// WithNucleus mounts through nu instead of a fresh Nucleus. Its queue is reset
// first.
func WithNucleus(nu *cell.Nucleus) Option {
	return func(o *mountOptions) {
		o.nucleus = nu
	}
}

// WithReload adds a script subscribing to the server-sent events at path.
func WithReload(path string) Option {
	return func(o *mountOptions) {
		o.events = path
	}
}

// Tree is a mounted page.
type Tree struct {
	Title      string
	Document   *dom.Document
	Reconciler *cell.Reconciler
	// Body is the root Phenotype wrapping the document body.
	Body *cell.Phenotype
	// Nodes is the number of Phenotypes mounted under Body.
	Nodes int

	pretty bool
}

// Mount builds every body Genotype on a new document and flushes the Nucleus
// once, so that each node received its init hook. No update pass runs until
// tracked state changes.
func (p *Page) Mount(options ...Option) (*Tree, error) {
	o := mountOptions{log: zerolog.Nop()}
	for _, option := range options {
		option(&o)
	}

	doc := dom.NewDocument()
	doc.SetTitle(p.Title)
	doc.SetLang(p.Lang)

	nu := o.nucleus
	if nu == nil {
		nu = cell.NewNucleus(cell.WithLogger(o.log), cell.WithMetrics(o.metrics))
	} else {
		nu.Reset()
	}
	r := cell.NewReconciler(doc, nu)
	body := cell.Wrap(doc.Body())
	for i, g := range p.Body {
		if _, err := r.Append(body, g); err != nil {
			return nil, fmt.Errorf("page: body[%d]: %w", i, err)
		}
	}
	nu.Flush()

	if o.events != "" {
		script, err := doc.CreateElement("script")
		if err != nil {
			return nil, err
		}
		if err := script.SetAttribute("id", "ssesupport"); err != nil {
			return nil, err
		}
		if err := script.SetContent(fmt.Sprintf(reloadScript, o.events)); err != nil {
			return nil, err
		}
		if err := doc.Head().AppendChild(script); err != nil {
			return nil, err
		}
	}

	t := &Tree{
		Title:      p.Title,
		Document:   doc,
		Reconciler: r,
		Body:       body,
		pretty:     p.Options.Pretty,
	}
	t.walk(func(*cell.Phenotype, int) { t.Nodes++ })
	o.log.Debug().Str("path", p.Path).Int("nodes", t.Nodes).Msg("page mounted")
	return t, nil
}

// Render writes the document, indented when the page asks for it.
func (t *Tree) Render(w io.Writer) error {
	if t.pretty {
		return t.Document.RenderIndent(w)
	}
	return t.Document.Render(w)
}

// SetPretty overrides the page's pretty option.
func (t *Tree) SetPretty(pretty bool) {
	t.pretty = pretty
}

// Render mounts the page and writes it to w.
func (p *Page) Render(w io.Writer, options ...Option) error {
	t, err := p.Mount(options...)
	if err != nil {
		return err
	}
	return t.Render(w)
}
