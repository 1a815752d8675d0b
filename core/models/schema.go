package models

import (
	"fmt"
	"strings"
)

// TypeKind is the semantic type of a property.
type TypeKind int

const (
	StringType TypeKind = iota
	BooleanType
	NumericType
	ReferenceType
	CollectionType
)

func (k TypeKind) String() string {
	switch k {
	case StringType:
		return "string"
	case BooleanType:
		return "boolean"
	case NumericType:
		return "number"
	case ReferenceType:
		return "reference"
	case CollectionType:
		return "collection"
	default:
		return "unknown"
	}
}

// HasElement reports whether properties of this kind point at a class.
func (k TypeKind) HasElement() bool {
	return k == ReferenceType || k == CollectionType
}

func ParseTypeKind(s string) (TypeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return StringType, nil
	case "boolean", "bool":
		return BooleanType, nil
	case "number", "numeric", "int", "integer", "float":
		return NumericType, nil
	case "reference", "ref":
		return ReferenceType, nil
	case "collection", "set", "list":
		return CollectionType, nil
	default:
		return 0, fmt.Errorf("unknown property type %q", s)
	}
}

type Property struct {
	Name        string
	Description string
	Type        TypeKind
	// Element is the target class of reference and collection properties.
	Element *ClassSpec
}

type ClassSpec struct {
	ID          string
	Name        string
	Description string
	Ancestor    *ClassSpec
	Properties  []*Property
}

func (c *ClassSpec) AncestorName() string {
	if c.Ancestor == nil {
		return ""
	}
	return c.Ancestor.Name
}

// Lineage returns the inheritance chain starting at the root-most ancestor and
// ending with c itself.
func (c *ClassSpec) Lineage() []*ClassSpec {
	var chain []*ClassSpec
	seen := make(map[*ClassSpec]bool)
	for cur := c; cur != nil && !seen[cur]; cur = cur.Ancestor {
		seen[cur] = true
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// AllProperties returns inherited and own properties, root-most ancestor first.
func (c *ClassSpec) AllProperties() []*Property {
	var props []*Property
	for _, cls := range c.Lineage() {
		props = append(props, cls.Properties...)
	}
	return props
}

type Module struct {
	Name    string
	System  bool
	Classes []*ClassSpec
}

type Workspace struct {
	ID      string
	Name    string
	Modules []*Module
}

// UserModules returns the non-system modules in snapshot order. Only these are
// materialized to files.
func (w *Workspace) UserModules() []*Module {
	var modules []*Module
	for _, m := range w.Modules {
		if !m.System {
			modules = append(modules, m)
		}
	}
	return modules
}

func (w *Workspace) FindClass(name string) (*ClassSpec, bool) {
	for _, m := range w.Modules {
		for _, c := range m.Classes {
			if c.Name == name {
				return c, true
			}
		}
	}
	return nil, false
}
