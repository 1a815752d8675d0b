package generator

import (
	"errors"
	"fmt"

	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/shared"
)

var ErrMissingElement = errors.New("property has no element class")

// Declaration is what a single property contributes to a declarations file:
// a field line for the instance interface and an optional metadata line.
type Declaration struct {
	Field string
	Meta  string
}

func (d Declaration) Lines() []string {
	if d.Meta == "" {
		return []string{d.Field}
	}
	return []string{d.Field, d.Meta}
}

type declarer func(member string, prop *models.Property) (Declaration, error)

var declarers = map[models.TypeKind]declarer{
	models.StringType:     primitive("string"),
	models.BooleanType:    primitive("boolean"),
	models.NumericType:    primitive("number"),
	models.ReferenceType:  reference,
	models.CollectionType: collection,
}

func primitive(tsType string) declarer {
	return func(member string, _ *models.Property) (Declaration, error) {
		return Declaration{
			Field: fmt.Sprintf("%s: %s;", member, tsType),
			Meta:  fmt.Sprintf("readonly %s_val: PrimitiveValue<%s>;", member, tsType),
		}, nil
	}
}

func reference(member string, prop *models.Property) (Declaration, error) {
	element, err := elementName(prop)
	if err != nil {
		return Declaration{}, err
	}
	return Declaration{
		Field: fmt.Sprintf("%s: %s;", member, element),
		Meta:  fmt.Sprintf("readonly %s_ref: ReferenceValue<%s>;", member, element),
	}, nil
}

// Collections are read through the owning side, so there is no metadata line.
func collection(member string, prop *models.Property) (Declaration, error) {
	element, err := elementName(prop)
	if err != nil {
		return Declaration{}, err
	}
	return Declaration{
		Field: fmt.Sprintf("%s: InversedSet<%s>;", member, element),
	}, nil
}

func elementName(prop *models.Property) (string, error) {
	if prop.Element == nil {
		return "", fmt.Errorf("%w: %s (%s)", ErrMissingElement, prop.Name, prop.Type)
	}
	return shared.ToPascalCase(prop.Element.Name), nil
}

// Declare maps a property to its declaration lines.
func Declare(prop *models.Property) (Declaration, error) {
	d, ok := declarers[prop.Type]
	if !ok {
		return Declaration{}, fmt.Errorf("property %s: unsupported type %s", prop.Name, prop.Type)
	}
	return d(shared.ToCamelCase(prop.Name), prop)
}
