package cell

import (
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Meta holds the reconciliation bookkeeping of a live node.
type Meta struct {
	// Namespace is the element namespace URI, empty for the default namespace.
	// A fragment carries the namespace its children are created under.
	Namespace string
	// Updated is true once an update pass ran and no tracked state changed since.
	Updated bool
}

// Phenotype is a live node: the host node handle together with the state the
// reconciler attaches to it.
type Phenotype struct {
	ID     string
	Native NativeNode

	Parent   *Phenotype
	Children []*Phenotype

	Meta     Meta
	Genotype *Genotype

	// Inheritance lists the inherited keys this node tracks on behalf of its
	// descendants. It is empty for a root.
	Inheritance []string

	// Components is the last reconciled sequence of child Genotypes. It stays
	// nil until the children reconciler runs on the node.
	Components []*Genotype

	state       map[string]any
	nucleus     *Nucleus
	initialized bool
	// stale marks tracked state changed since the last delivery.
	stale bool
}

func newPhenotype(native NativeNode, meta Meta) *Phenotype {
	return &Phenotype{
		ID:          ulid.Make().String(),
		Native:      native,
		Meta:        meta,
		Genotype:    NewGenotype(),
		Inheritance: []string{},
		state:       make(map[string]any),
	}
}

// Wrap adopts an existing host node, typically a document body, as a root
// Phenotype onto which Genotypes can be mounted.
func Wrap(native NativeNode) *Phenotype {
	return newPhenotype(native, Meta{Namespace: native.Namespace()})
}

// Type returns the live kind of the node: "text", "fragment" or the lower-case
// tag name.
func (p *Phenotype) Type() string {
	switch p.Native.NodeType() {
	case TextNode:
		return "text"
	case FragmentNode:
		return "fragment"
	}
	return strings.ToLower(p.Native.TagName())
}

// Attached reports whether the node has a parent in the live tree.
func (p *Phenotype) Attached() bool {
	return p.Parent != nil
}

// Bound reports whether the node was registered with a Nucleus.
func (p *Phenotype) Bound() bool {
	return p.nucleus != nil
}

// Lifecycle returns the hooks declared by the node's Genotype.
func (p *Phenotype) Lifecycle() Lifecycle {
	return lifecycleOf(p.Genotype)
}

// Get returns the tracked value of an inherited key held by this node.
func (p *Phenotype) Get(key string) (any, bool) {
	v, ok := p.state[key]
	return v, ok
}

// Lookup returns the value of an inherited key, resolving it from the closest
// ancestor when the node does not hold it itself.
func (p *Phenotype) Lookup(key string) (any, bool) {
	if v, ok := p.state[key]; ok {
		return v, true
	}
	for n := p; n.Parent != nil && slices.Contains(n.Inheritance, key); n = n.Parent {
		if v, ok := n.Parent.state[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set changes tracked state. A bound node is invalidated and queued for the
// next flush of its Nucleus.
func (p *Phenotype) Set(key string, value any) {
	p.state[key] = value
	if p.nucleus == nil {
		return
	}
	p.Meta.Updated = false
	p.stale = true
	p.nucleus.Queue(p)
}

// AppendChild appends child to the host node and to the mirrored child list.
func (p *Phenotype) AppendChild(child *Phenotype) error {
	if child.Parent != nil {
		if err := child.Parent.RemoveChild(child); err != nil {
			return err
		}
	}
	if err := p.Native.AppendChild(child.Native); err != nil {
		return err
	}
	child.Parent = p
	p.Children = append(p.Children, child)
	child.requeue()
	return nil
}

// ReplaceChild substitutes newChild for oldChild at the same position.
func (p *Phenotype) ReplaceChild(newChild *Phenotype, oldChild *Phenotype) error {
	index := slices.Index(p.Children, oldChild)
	if index < 0 {
		return ErrNotAChild
	}
	if err := p.Native.ReplaceChild(newChild.Native, oldChild.Native); err != nil {
		return err
	}
	p.Children[index] = newChild
	newChild.Parent = p
	oldChild.Parent = nil
	newChild.requeue()
	return nil
}

// requeue schedules a bound node whose init hook has not run yet, so that a
// node dropped by a flush while detached is initialized once attached.
func (p *Phenotype) requeue() {
	if p.nucleus != nil && !p.initialized {
		p.nucleus.Queue(p)
	}
}

func (p *Phenotype) RemoveChild(child *Phenotype) error {
	index := slices.Index(p.Children, child)
	if index < 0 {
		return ErrNotAChild
	}
	if err := p.Native.RemoveChild(child.Native); err != nil {
		return err
	}
	p.Children = slices.Delete(p.Children, index, index+1)
	child.Parent = nil
	return nil
}

func (p *Phenotype) RemoveChildren() error {
	for len(p.Children) > 0 {
		if err := p.RemoveChild(p.Children[len(p.Children)-1]); err != nil {
			return err
		}
	}
	return nil
}

// detachChildren unlinks the mirrored children after the host dropped them.
func (p *Phenotype) detachChildren() {
	for _, child := range p.Children {
		child.Parent = nil
	}
	p.Children = nil
}

// Walk visits the subtree rooted at p depth first. Returning false from fn
// skips the descendants of the visited node.
func (p *Phenotype) Walk(fn func(n *Phenotype, depth int) bool) {
	p.walk(fn, 0)
}

func (p *Phenotype) walk(fn func(n *Phenotype, depth int) bool, depth int) {
	if !fn(p, depth) {
		return
	}
	for _, child := range p.Children {
		child.walk(fn, depth+1)
	}
}
