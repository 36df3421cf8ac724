// Package page loads YAML page files into Genotypes and renders them through
// the HTML host driver.
package page

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/zrbsprite/cell"
)

var (
	ErrNoBody      = errors.New("page: no body")
	ErrInvalidBody = errors.New("page: invalid body")
)

// Page is a parsed page file.
type Page struct {
	Title   string  `mapstructure:"title"`
	Lang    string  `mapstructure:"lang"`
	Options Options `mapstructure:"options"`

	// Body holds the top-level Genotypes, mounted in order on the document body.
	Body []*cell.Genotype `mapstructure:"-"`
	// Path is the file the page was loaded from, if any.
	Path string `mapstructure:"-"`
}

type Options struct {
	Pretty bool `mapstructure:"pretty"`
	// HotReload opts the page in or out of live reload when served. Nil
	// leaves the choice to the server.
	HotReload *bool `mapstructure:"hot_reload"`
}

// Reload reports whether live reload is enabled, given the server default.
func (o Options) Reload(def bool) bool {
	if o.HotReload == nil {
		return def
	}
	return *o.HotReload
}

func Load(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Parse reads a page document. The body is walked node by node so that the
// key order of every mapping is kept in the resulting Genotypes.
func Parse(data []byte) (*Page, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrNoBody
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("page: line %d: expected a mapping at the top level", root.Line)
	}

	header := make(map[string]any)
	var body *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, resolve(root.Content[i+1])
		if key == "body" {
			body = value
			continue
		}
		var v any
		if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("page: %s: %w", key, err)
		}
		header[key] = v
	}

	p := &Page{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(header); err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}

	if body == nil || (body.Kind == yaml.ScalarNode && body.Tag == "!!null") {
		return nil, ErrNoBody
	}
	p.Body, err = genotypes(body)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func genotypes(n *yaml.Node) ([]*cell.Genotype, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d: expected a sequence of nodes", ErrInvalidBody, n.Line)
	}
	list := make([]*cell.Genotype, 0, len(n.Content))
	for _, item := range n.Content {
		g, err := genotype(resolve(item))
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, nil
}

func genotype(n *yaml.Node) (*cell.Genotype, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidBody, n.Line)
	}
	g := cell.NewGenotype()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i].Value, resolve(n.Content[i+1])
		if key == cell.ComponentsKey {
			components, err := genotypes(value)
			if err != nil {
				return nil, err
			}
			g.Set(key, components)
			continue
		}
		var v any
		if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidBody, value.Line, err)
		}
		g.Set(key, v)
	}
	return g, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
