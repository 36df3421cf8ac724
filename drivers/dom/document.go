// Package dom is a host live tree for cell built on golang.org/x/net/html.
// Nodes are plain html.Nodes, so a reconciled tree can be rendered as HTML
// on a server or in a static build.
package dom

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zrbsprite/cell"
)

// Namespace URIs understood by the driver.
const (
	XHTMLNamespace  = "http://www.w3.org/1999/xhtml"
	SVGNamespace    = cell.SVGNamespace
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)

var (
	ErrInvalidCharacter = errors.New("dom: invalid character in name")
	ErrHierarchy        = errors.New("dom: node cannot be inserted at this point")
	ErrNotFound         = errors.New("dom: node is not a child of this node")
	ErrNotElement       = errors.New("dom: node is not an element")
	ErrWrongDocument    = errors.New("dom: node does not belong to this driver")
)

// Document is an HTML document. It implements cell.Document.
type Document struct {
	root  *html.Node
	html  *Node
	head  *Node
	title *Node
	body  *Node
}

var _ cell.Document = (*Document)(nil)

// NewDocument returns an empty HTML5 document with a head, a title and a body.
func NewDocument() *Document {
	d := &Document{root: &html.Node{Type: html.DocumentNode}}
	d.root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	d.html = d.element("html")
	d.head = d.element("head")
	d.title = d.element("title")
	d.body = d.element("body")

	d.root.AppendChild(d.html.raw)
	d.html.raw.AppendChild(d.head.raw)
	d.head.raw.AppendChild(d.title.raw)
	d.html.raw.AppendChild(d.body.raw)
	return d
}

func (d *Document) element(tag string) *Node {
	return wrap(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}, "")
}

func (d *Document) Body() *Node { return d.body }
func (d *Document) Head() *Node { return d.head }

func (d *Document) SetTitle(title string) {
	d.title.SetContent(title)
}

func (d *Document) SetLang(lang string) {
	if lang == "" {
		d.html.RemoveAttribute("lang")
		return
	}
	d.html.SetAttribute("lang", lang)
}

// Render writes the document as compact HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// RenderIndent writes the document as indented HTML.
func (d *Document) RenderIndent(w io.Writer) error {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return err
	}
	_, err := io.WriteString(w, gohtml.Format(buf.String()))
	return err
}

func (d *Document) CreateTextNode(text string) cell.NativeNode {
	return wrap(&html.Node{Type: html.TextNode, Data: text}, "")
}

// CreateFragment returns a grouping node. It is rendered as its children.
func (d *Document) CreateFragment() cell.NativeNode {
	return wrap(&html.Node{Type: html.DocumentNode}, "")
}

// CreateElement creates an element in the HTML namespace. The tag name is
// lower-cased.
func (d *Document) CreateElement(tag string) (cell.NativeNode, error) {
	return d.CreateElementNS("", tag)
}

// CreateElementNS creates an element in namespace. Tag names keep their case
// outside of the HTML namespace.
func (d *Document) CreateElementNS(namespace string, tag string) (cell.NativeNode, error) {
	if !validName(tag) {
		return nil, ErrInvalidCharacter
	}
	short := shortNamespace(namespace)
	if namespace == "" || namespace == XHTMLNamespace {
		tag = strings.ToLower(tag)
		namespace = ""
	}
	raw := &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		DataAtom:  atom.Lookup([]byte(tag)),
		Namespace: short,
	}
	return wrap(raw, namespace), nil
}

// shortNamespace maps a namespace URI onto the foreign content names of
// x/net/html. Other namespaces are only tracked by the driver.
func shortNamespace(uri string) string {
	switch uri {
	case SVGNamespace:
		return "svg"
	case MathMLNamespace:
		return "math"
	}
	return ""
}

// validName reports whether name can be used as a tag name: a letter followed
// by letters, digits, '-', '_', '.' or ':'.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.' || r == ':'):
		default:
			return false
		}
	}
	return true
}

// validAttributeName rejects the characters that cannot appear in an
// attribute name of serialized HTML.
func validAttributeName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, " \t\n\f\r\"'>/=\x00")
}
