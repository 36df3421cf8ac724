package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/zrbsprite/cell"
)

// Node wraps an html.Node. It implements cell.NativeNode.
//
// Properties are kept beside the HTML node and are never serialized, like the
// live properties of a browser element.
type Node struct {
	raw       *html.Node
	namespace string
	props     map[string]any
}

var _ cell.NativeNode = (*Node)(nil)

func wrap(raw *html.Node, namespace string) *Node {
	return &Node{raw: raw, namespace: namespace, props: make(map[string]any)}
}

// Raw returns the underlying html.Node.
func (n *Node) Raw() *html.Node { return n.raw }

func (n *Node) NodeType() cell.NodeType {
	switch n.raw.Type {
	case html.TextNode:
		return cell.TextNode
	case html.DocumentNode:
		return cell.FragmentNode
	}
	return cell.ElementNode
}

func (n *Node) TagName() string {
	if n.raw.Type != html.ElementNode {
		return ""
	}
	return n.raw.Data
}

func (n *Node) Namespace() string { return n.namespace }

func (n *Node) AppendChild(child cell.NativeNode) error {
	c, err := n.adopt(child)
	if err != nil {
		return err
	}
	n.raw.AppendChild(c.raw)
	return nil
}

func (n *Node) ReplaceChild(newChild cell.NativeNode, oldChild cell.NativeNode) error {
	o, ok := oldChild.(*Node)
	if !ok {
		return ErrWrongDocument
	}
	if o.raw.Parent != n.raw {
		return ErrNotFound
	}
	if newChild == oldChild {
		return nil
	}
	c, err := n.adopt(newChild)
	if err != nil {
		return err
	}
	n.raw.InsertBefore(c.raw, o.raw)
	n.raw.RemoveChild(o.raw)
	return nil
}

func (n *Node) RemoveChild(child cell.NativeNode) error {
	c, ok := child.(*Node)
	if !ok {
		return ErrWrongDocument
	}
	if c.raw.Parent != n.raw {
		return ErrNotFound
	}
	n.raw.RemoveChild(c.raw)
	return nil
}

// adopt checks that child may be inserted under n and detaches it from its
// current parent.
func (n *Node) adopt(child cell.NativeNode) (*Node, error) {
	c, ok := child.(*Node)
	if !ok {
		return nil, ErrWrongDocument
	}
	if n.raw.Type == html.TextNode {
		return nil, ErrHierarchy
	}
	for a := n.raw; a != nil; a = a.Parent {
		if a == c.raw {
			return nil, ErrHierarchy
		}
	}
	if c.raw.Parent != nil {
		c.raw.Parent.RemoveChild(c.raw)
	}
	return c, nil
}

func (n *Node) SetAttribute(name string, value string) error {
	if n.raw.Type != html.ElementNode {
		return ErrNotElement
	}
	if !validAttributeName(name) {
		return ErrInvalidCharacter
	}
	if n.namespace == "" {
		name = strings.ToLower(name)
	}
	for i := range n.raw.Attr {
		if n.raw.Attr[i].Key == name {
			n.raw.Attr[i].Val = value
			return nil
		}
	}
	n.raw.Attr = append(n.raw.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

func (n *Node) RemoveAttribute(name string) {
	if n.namespace == "" {
		name = strings.ToLower(name)
	}
	attrs := n.raw.Attr[:0]
	for _, a := range n.raw.Attr {
		if a.Key != name {
			attrs = append(attrs, a)
		}
	}
	n.raw.Attr = attrs
}

func (n *Node) Attribute(name string) (string, bool) {
	if n.namespace == "" {
		name = strings.ToLower(name)
	}
	for _, a := range n.raw.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (n *Node) SetProperty(name string, value any) {
	n.props[name] = value
}

func (n *Node) RemoveProperty(name string) {
	delete(n.props, name)
}

// Property returns a live property. Form controls report their value
// attribute, or "", until the value property is set.
func (n *Node) Property(name string) (any, bool) {
	if v, ok := n.props[name]; ok {
		return v, true
	}
	if name == "value" && isFormControl(n.raw) {
		v, _ := n.Attribute("value")
		return v, true
	}
	return nil, false
}

func isFormControl(raw *html.Node) bool {
	if raw.Type != html.ElementNode || raw.Namespace != "" {
		return false
	}
	switch raw.Data {
	case "input", "textarea", "select", "option", "button":
		return true
	}
	return false
}

// SetContent replaces the children of the node with a single text node, or
// sets the data of a text node.
func (n *Node) SetContent(text string) error {
	if n.raw.Type == html.TextNode {
		n.raw.Data = text
		return nil
	}
	for c := n.raw.FirstChild; c != nil; c = n.raw.FirstChild {
		n.raw.RemoveChild(c)
	}
	if text != "" {
		n.raw.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return nil
}

// Content returns the concatenated text of the subtree.
func (n *Node) Content() string {
	if n.raw.Type == html.TextNode {
		return n.raw.Data
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(h *html.Node) {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
				continue
			}
			collect(c)
		}
	}
	collect(n.raw)
	return b.String()
}

func (n *Node) Render(w io.Writer) error {
	return html.Render(w, n.raw)
}

// OuterHTML returns the serialized node.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	if err := n.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the serialized children of the node.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	for c := n.raw.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}
