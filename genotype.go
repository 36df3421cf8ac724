package cell

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Reserved Genotype keys.
const (
	TypeKey       = "$type"
	TextKey       = "$text"
	ComponentsKey = "$components"
	InitKey       = "$init"
	UpdateKey     = "$update"
)

// InheritedPrefix marks a key whose value is tracked on behalf of descendants.
const InheritedPrefix = "_"

// Genotype is the declarative description of one node. Keys keep their
// declaration order.
//
// A Genotype handed to a Reconciler is treated as immutable: updates replace the
// node's Genotype with a modified copy.
type Genotype struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewGenotype returns an empty Genotype.
func NewGenotype() *Genotype {
	return &Genotype{orderedmap.New[string, any]()}
}

// Describe builds a Genotype from alternating key/value arguments.
//
//	Describe("$type", "li", "class", "red")
//
// It panics if a key is not a string or if a value is missing.
func Describe(keyvalues ...any) *Genotype {
	if len(keyvalues)%2 != 0 {
		panic("cell: Describe expects key/value pairs")
	}
	g := NewGenotype()
	for i := 0; i < len(keyvalues); i += 2 {
		key, ok := keyvalues[i].(string)
		if !ok {
			panic(fmt.Sprintf("cell: Genotype key %v is not a string", keyvalues[i]))
		}
		g.Set(key, keyvalues[i+1])
	}
	return g
}

func (g *Genotype) Set(key string, value any) *Genotype {
	g.fields.Set(key, value)
	return g
}

func (g *Genotype) Get(key string) (any, bool) {
	if g == nil {
		return nil, false
	}
	return g.fields.Get(key)
}

func (g *Genotype) Delete(key string) *Genotype {
	g.fields.Delete(key)
	return g
}

func (g *Genotype) Len() int {
	if g == nil {
		return 0
	}
	return g.fields.Len()
}

// Keys returns the keys in declaration order.
func (g *Genotype) Keys() []string {
	keys := make([]string, 0, g.Len())
	g.Each(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Each calls fn for every key in declaration order until fn returns false.
func (g *Genotype) Each(fn func(key string, value any) bool) {
	if g == nil {
		return
	}
	for pair := g.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a shallow copy. Nested component Genotypes are shared.
func (g *Genotype) Clone() *Genotype {
	c := NewGenotype()
	g.Each(func(key string, value any) bool {
		c.fields.Set(key, value)
		return true
	})
	return c
}

// With returns a copy of g where key is set to value. An existing key keeps its
// position.
func (g *Genotype) With(key string, value any) *Genotype {
	return g.Clone().Set(key, value)
}

// Type returns the $type value, or "" when absent.
func (g *Genotype) Type() string {
	v, ok := g.Get(TypeKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Text returns the $text value, or "" when absent.
func (g *Genotype) Text() string {
	v, ok := g.Get(TextKey)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}

// Components returns the $components sequence. ok is false when the key is
// absent or does not hold a sequence of Genotypes.
func (g *Genotype) Components() (components []*Genotype, ok bool) {
	v, present := g.Get(ComponentsKey)
	if !present {
		return nil, false
	}
	return componentList(v)
}

// InheritedKeys returns the declared inherited keys, in order.
func (g *Genotype) InheritedKeys() []string {
	var keys []string
	g.Each(func(key string, _ any) bool {
		if isInherited(key) {
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

// String renders a compact debugging form of the Genotype.
func (g *Genotype) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	g.Each(func(key string, value any) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(key)
		b.WriteString(": ")
		switch v := value.(type) {
		case []*Genotype:
			fmt.Fprintf(&b, "[%d components]", len(v))
		case string:
			fmt.Fprintf(&b, "%q", v)
		default:
			if isFunc(v) {
				b.WriteString("func")
			} else {
				fmt.Fprint(&b, v)
			}
		}
		return true
	})
	b.WriteByte('}')
	return b.String()
}

func componentList(v any) ([]*Genotype, bool) {
	switch c := v.(type) {
	case nil:
		return []*Genotype{}, true
	case []*Genotype:
		if c == nil {
			return []*Genotype{}, true
		}
		return c, true
	case []any:
		list := make([]*Genotype, 0, len(c))
		for _, item := range c {
			g, ok := item.(*Genotype)
			if !ok {
				return nil, false
			}
			list = append(list, g)
		}
		return list, true
	}
	return nil, false
}

func isInherited(key string) bool {
	return strings.HasPrefix(key, InheritedPrefix)
}
