package cell

import (
	"slices"

	"github.com/rs/zerolog"
)

// SVGNamespace is the namespace URI of elements built from a "svg" Genotype and
// of their descendants.
const SVGNamespace = "http://www.w3.org/2000/svg"

const defaultTag = "div"

// Reconciler builds and patches Phenotypes on a host Document.
//
// A Reconciler is not safe for concurrent use. When Genotypes change from other
// goroutines, post the work through Nucleus.Do.
type Reconciler struct {
	Document   Document
	Nucleus    *Nucleus
	OnMutation *MutationCallbacks

	log zerolog.Logger
}

// NewReconciler returns a Reconciler creating nodes through doc and registering
// them with nu. A nil nu gets a fresh Nucleus.
func NewReconciler(doc Document, nu *Nucleus) *Reconciler {
	if nu == nil {
		nu = NewNucleus()
	}
	return &Reconciler{
		Document:   doc,
		Nucleus:    nu,
		OnMutation: NewMutationCallbacks(),
		log:        nu.log,
	}
}

// Observe registers h for the given mutation kind.
func (r *Reconciler) Observe(kind string, h *MutationHandler) *Reconciler {
	r.OnMutation.Add(kind, h)
	return r
}

// Type is the node factory. It creates the host node matching the $type of g,
// using namespace for elements that do not define their own. Only the kind and
// the namespace are resolved: values are populated by Build.
func (r *Reconciler) Type(g *Genotype, namespace string) (*Phenotype, error) {
	if r.Document == nil {
		return nil, ErrNoDocument
	}
	var (
		native NativeNode
		meta   Meta
		err    error
	)
	switch typ := g.Type(); typ {
	case "text":
		native = r.Document.CreateTextNode(g.Text())
	case "svg":
		meta.Namespace = SVGNamespace
		native, err = r.Document.CreateElementNS(SVGNamespace, typ)
	case "fragment":
		// children of a fragment land in the fragment's parent
		meta.Namespace = namespace
		native = r.Document.CreateFragment()
	default:
		if typ == "" {
			typ = defaultTag
		}
		if namespace != "" {
			meta.Namespace = namespace
			native, err = r.Document.CreateElementNS(namespace, typ)
		} else {
			native, err = r.Document.CreateElement(typ)
		}
	}
	if err != nil {
		return nil, err
	}

	p := newPhenotype(native, meta)
	p.Genotype = g
	r.OnMutation.DispatchEvent(Mutation{Kind: MutationType, Key: TypeKey, Value: p.Type(), Node: p})
	return p, nil
}

// Components is the children reconciler. The current children of p are
// removed and one child is built per Genotype, in order. The sequence is
// recorded on p.Components, including when it is empty.
func (r *Reconciler) Components(p *Phenotype, components []*Genotype) error {
	if components == nil {
		components = []*Genotype{}
	}
	if err := p.RemoveChildren(); err != nil {
		return err
	}

	inheritance := inherit(p)
	for _, g := range components {
		child, err := r.Type(g, p.Meta.Namespace)
		if err != nil {
			return err
		}
		child.Inheritance = slices.Clone(inheritance)
		child, err = r.Build(child, g)
		if err != nil {
			return err
		}
		if err := p.AppendChild(child); err != nil {
			return err
		}
	}

	p.Components = components
	r.OnMutation.DispatchEvent(Mutation{Kind: MutationComponents, Key: ComponentsKey, Value: components, Node: p})
	return nil
}

// Update reconciles a single key of p with value. The node's Genotype is
// replaced by a copy holding the new value.
//
// A $type change replaces the node: the returned Phenotype is the one now
// standing for the Genotype, and p is detached. In every other case p itself is
// returned.
func (r *Reconciler) Update(p *Phenotype, key string, value any) (*Phenotype, error) {
	p.Genotype = p.Genotype.With(key, value)
	return r.apply(p, key, value)
}

// Build reconciles every key of g onto p in declaration order, then runs Init
// once. When a $type key replaces p, the replacement is returned: it was built
// and initialised on its own and p is left as is.
func (r *Reconciler) Build(p *Phenotype, g *Genotype) (*Phenotype, error) {
	if g == nil {
		g = NewGenotype()
	}
	p.Genotype = g
	r.Nucleus.Build(p)

	var err error
	current := p
	g.Each(func(key string, value any) bool {
		current, err = r.apply(p, key, value)
		return err == nil && current == p
	})
	if err != nil {
		return nil, err
	}
	if current != p {
		return current, nil
	}

	r.OnMutation.DispatchEvent(Mutation{Kind: MutationBuild, Value: g, Node: p})
	r.Init(p)
	return p, nil
}

// Init is the lifecycle dispatcher. It binds p to the Nucleus and queues it;
// no hook runs before the next flush.
func (r *Reconciler) Init(p *Phenotype) {
	r.Nucleus.Bind(p)
	r.Nucleus.Queue(p)
	r.OnMutation.DispatchEvent(Mutation{Kind: MutationInit, Node: p})
}

// Append builds g as a new last child of parent.
func (r *Reconciler) Append(parent *Phenotype, g *Genotype) (*Phenotype, error) {
	child, err := r.Type(g, parent.Meta.Namespace)
	if err != nil {
		return nil, err
	}
	child.Inheritance = inherit(parent)
	child, err = r.Build(child, g)
	if err != nil {
		return nil, err
	}
	if err := parent.AppendChild(child); err != nil {
		return nil, err
	}
	return child, nil
}
