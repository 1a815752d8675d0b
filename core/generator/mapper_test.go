package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/modelsync/core/models"
)

func TestDeclareEveryType(t *testing.T) {
	person := &models.ClassSpec{Name: "Person"}
	item := &models.ClassSpec{Name: "line item"}

	tests := []struct {
		name string
		prop *models.Property
		want []string
	}{
		{
			name: "string",
			prop: &models.Property{Name: "title", Type: models.StringType},
			want: []string{"title: string;", "readonly title_val: PrimitiveValue<string>;"},
		},
		{
			name: "boolean",
			prop: &models.Property{Name: "paid", Type: models.BooleanType},
			want: []string{"paid: boolean;", "readonly paid_val: PrimitiveValue<boolean>;"},
		},
		{
			name: "number",
			prop: &models.Property{Name: "age", Type: models.NumericType},
			want: []string{"age: number;", "readonly age_val: PrimitiveValue<number>;"},
		},
		{
			name: "reference",
			prop: &models.Property{Name: "owner", Type: models.ReferenceType, Element: person},
			want: []string{"owner: Person;", "readonly owner_ref: ReferenceValue<Person>;"},
		},
		{
			name: "collection",
			prop: &models.Property{Name: "items", Type: models.CollectionType, Element: item},
			want: []string{"items: InversedSet<LineItem>;"},
		},
		{
			name: "member names are camel case",
			prop: &models.Property{Name: "first name", Type: models.StringType},
			want: []string{"firstName: string;", "readonly firstName_val: PrimitiveValue<string>;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Declare(tt.prop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Lines())
		})
	}
}

func TestDeclareMissingElement(t *testing.T) {
	for _, kind := range []models.TypeKind{models.ReferenceType, models.CollectionType} {
		_, err := Declare(&models.Property{Name: "owner", Type: kind})
		assert.True(t, errors.Is(err, ErrMissingElement), kind.String())
	}
}

func TestDeclareUnknownKind(t *testing.T) {
	_, err := Declare(&models.Property{Name: "x", Type: models.TypeKind(99)})
	assert.Error(t, err)
}
