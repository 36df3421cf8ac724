package cell

import (
	"reflect"
	"slices"
)

// KeyClass is the reconciliation strategy selected for a Genotype key.
type KeyClass int

const (
	KeyPlain      KeyClass = iota // host attribute or property
	KeyType                       // node kind, may replace the node
	KeyText                       // whole content
	KeyComponents                 // children
	KeyInit                       // init hook, kept on the Genotype
	KeyUpdate                     // update hook, kept on the Genotype
	KeyInherited                  // tracked state, visible to descendants
)

func (k KeyClass) String() string {
	switch k {
	case KeyPlain:
		return "plain"
	case KeyType:
		return "type"
	case KeyText:
		return "text"
	case KeyComponents:
		return "components"
	case KeyInit:
		return "init"
	case KeyUpdate:
		return "update"
	case KeyInherited:
		return "inherited"
	default:
		return "unknown"
	}
}

var reservedKeys = map[string]KeyClass{
	TypeKey:       KeyType,
	TextKey:       KeyText,
	ComponentsKey: KeyComponents,
	InitKey:       KeyInit,
	UpdateKey:     KeyUpdate,
}

// Classify resolves the class of key for node p. Keys listed in the node's
// Inheritance are inherited even without the prefix.
func Classify(p *Phenotype, key string) KeyClass {
	if class, ok := reservedKeys[key]; ok {
		return class
	}
	if isInherited(key) {
		return KeyInherited
	}
	if p != nil && slices.Contains(p.Inheritance, key) {
		return KeyInherited
	}
	return KeyPlain
}

// liveProperties lists the plain keys written to the host as live properties
// instead of attributes, so that interactive state already held by the node is
// overwritten. The list is closed.
var liveProperties = map[string]bool{
	"value": true,
}

func isFunc(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
