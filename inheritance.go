package cell

import "slices"

// inherit computes the Inheritance of a child of parent: the parent's own
// Inheritance followed by the inherited keys its Genotype declares.
func inherit(parent *Phenotype) []string {
	inheritance := make([]string, len(parent.Inheritance), len(parent.Inheritance)+parent.Genotype.Len())
	copy(inheritance, parent.Inheritance)
	for _, key := range parent.Genotype.InheritedKeys() {
		if !slices.Contains(inheritance, key) {
			inheritance = append(inheritance, key)
		}
	}
	return inheritance
}
