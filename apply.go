package cell

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// apply dispatches one key on its class. It returns the node standing for the
// Genotype afterwards, which differs from p only after a replacement.
func (r *Reconciler) apply(p *Phenotype, key string, value any) (*Phenotype, error) {
	var err error
	switch Classify(p, key) {
	case KeyType:
		var replacement *Phenotype
		replacement, err = r.replace(p, value)
		if replacement != nil {
			p = replacement
		}
	case KeyText:
		err = r.setText(p, value)
	case KeyComponents:
		components, ok := componentList(value)
		if !ok {
			err = fmt.Errorf("%w: got %T", ErrInvalidComponents, value)
			break
		}
		err = r.Components(p, components)
	case KeyInit, KeyUpdate:
		// read from the Genotype by the Nucleus
	case KeyInherited:
		p.Set(key, value)
	default:
		if p.Native.NodeType() == TextNode {
			break
		}
		err = r.setPlain(p, key, value)
	}
	if err != nil {
		return nil, err
	}
	r.OnMutation.DispatchEvent(Mutation{Kind: MutationUpdate, Key: key, Value: value, Node: p})
	return p, nil
}

// replace rebuilds p when typ names another kind of node. It returns nil when
// the kind is unchanged.
func (r *Reconciler) replace(p *Phenotype, typ any) (*Phenotype, error) {
	kind := typeName(typ)
	if kind == p.Type() {
		return nil, nil
	}

	g := p.Genotype.With(TypeKey, typ)
	var namespace string
	if p.Parent != nil {
		namespace = p.Parent.Meta.Namespace
	}
	fresh, err := r.Type(g, namespace)
	if err != nil {
		return nil, err
	}
	fresh.Inheritance = slices.Clone(p.Inheritance)
	fresh, err = r.Build(fresh, g)
	if err != nil {
		return nil, err
	}
	if p.Parent != nil {
		if err := p.Parent.ReplaceChild(fresh, p); err != nil {
			return nil, err
		}
	}

	r.log.Debug().Str("id", p.ID).Str("from", p.Type()).Str("to", kind).Str("replacement", fresh.ID).Msg("node replaced")
	r.OnMutation.DispatchEvent(Mutation{Kind: MutationReplace, Key: TypeKey, Value: kind, Node: fresh})
	return fresh, nil
}

func (r *Reconciler) setText(p *Phenotype, value any) error {
	if err := p.Native.SetContent(stringify(value)); err != nil {
		return err
	}
	p.detachChildren()
	return nil
}

func (r *Reconciler) setPlain(p *Phenotype, key string, value any) error {
	switch {
	case value == nil:
		p.Native.RemoveAttribute(key)
		p.Native.RemoveProperty(key)
	case isFunc(value):
		p.Native.SetProperty(key, value)
	case isScalar(value):
		if !liveProperties[key] {
			return p.Native.SetAttribute(key, stringify(value))
		}
		p.Native.SetProperty(key, stringify(value))
	default:
		p.Native.SetProperty(key, value)
	}
	return nil
}

// typeName normalizes a $type value to the name Phenotype.Type reports.
// Anything but a non-empty string builds the default element.
func typeName(typ any) string {
	s, ok := typ.(string)
	if !ok || s == "" {
		return defaultTag
	}
	return strings.ToLower(s)
}

func stringify(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
