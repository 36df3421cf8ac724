// Package cell reconciles declarative node descriptions (Genotypes) against a
// live, retained node tree (Phenotypes) and schedules lifecycle updates through
// a batching queue (the Nucleus).
package cell

import "io"

// NodeType identifies the kind of a host node. The values follow the DOM
// nodeType constants.
type NodeType int

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	FragmentNode NodeType = 11
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case FragmentNode:
		return "fragment"
	default:
		return "unknown"
	}
}

// Document is the node factory of the host live tree.
type Document interface {
	CreateTextNode(text string) NativeNode
	CreateFragment() NativeNode
	CreateElement(tag string) (NativeNode, error)
	CreateElementNS(namespace string, tag string) (NativeNode, error)
}

// NativeNode is a node of the host live tree. Errors returned by a host are
// passed through the reconciler unmodified.
type NativeNode interface {
	NodeType() NodeType
	TagName() string
	Namespace() string

	AppendChild(child NativeNode) error
	ReplaceChild(newChild NativeNode, oldChild NativeNode) error
	RemoveChild(child NativeNode) error

	SetAttribute(name string, value string) error
	RemoveAttribute(name string)
	Attribute(name string) (string, bool)

	SetProperty(name string, value any)
	RemoveProperty(name string)
	Property(name string) (any, bool)

	// SetContent replaces the whole content of the node with text.
	SetContent(text string) error
	Content() string

	// Render writes the serialized subtree rooted at the node.
	Render(w io.Writer) error
}
