package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/modelsync/core/models"
)

const salesDeclarations = `/* GENERATED FILE - DO NOT EDIT */

import { Stage, Entity, ClassSpec, Property, PrimitiveValue, ReferenceValue, InversedSet } from '@frusal/library-for-node';

declare module './sales' {

    interface Base extends Entity {
        /** Primary key */
        id: string;
    }
    // Base instance metadata
    interface Base extends Entity {
        readonly id_val: PrimitiveValue<string>;
    }
    // Base class metadata
    namespace Base {
        /** Base class spec ID (b-1). */
        const classSpecId: string;
        function classSpec(stage: Stage): ClassSpec;
        const id_prop: Property;
    }

    /**
     * An order.
     * Second line
     */
    interface Order extends Base {
        /** Primary key */
        id: string;
        total: number;
        customer: Person;
        lines: InversedSet<Item>;
    }
    // Order instance metadata
    interface Order extends Base {
        readonly id_val: PrimitiveValue<string>;
        readonly total_val: PrimitiveValue<number>;
        readonly customer_ref: ReferenceValue<Person>;
    }
    // Order class metadata
    namespace Order {
        /** Order class spec ID (o-1). */
        const classSpecId: string;
        function classSpec(stage: Stage): ClassSpec;
        const id_prop: Property;
        const total_prop: Property;
        const customer_prop: Property;
        const lines_prop: Property;
    }
}
`

func TestGenerateDeclarations(t *testing.T) {
	got, err := GenerateDeclarations(salesModule(), requireOpts())
	require.NoError(t, err)
	assert.Equal(t, salesDeclarations, got)
}

func TestGenerateDeclarationsIsDeterministic(t *testing.T) {
	module := salesModule()
	first, err := GenerateDeclarations(module, requireOpts())
	require.NoError(t, err)
	second, err := GenerateDeclarations(module, requireOpts())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateDeclarationsEmptyModule(t *testing.T) {
	got, err := GenerateDeclarations(&models.Module{Name: "Empty Things"}, typeScriptOpts())
	require.NoError(t, err)
	assert.Equal(t, "/* GENERATED FILE - DO NOT EDIT */\n\n"+
		"import { Stage, Entity, ClassSpec, Property, PrimitiveValue, ReferenceValue, InversedSet } from '@frusal/library-for-node';\n\n"+
		"declare module './empty-things' {\n}\n", got)
}

func TestGenerateDeclarationsMissingElement(t *testing.T) {
	module := &models.Module{Name: "Broken", Classes: []*models.ClassSpec{{
		Name:       "Thing",
		Properties: []*models.Property{{Name: "owner", Type: models.ReferenceType}},
	}}}
	_, err := GenerateDeclarations(module, requireOpts())
	assert.True(t, errors.Is(err, ErrMissingElement))
}

func TestFileNames(t *testing.T) {
	module := &models.Module{Name: "Order Management"}
	assert.Equal(t, "order-management.rt.d.ts", DeclarationsFileName(module))
	assert.Equal(t, "order-management.js", StubFileName(module, requireOpts()))
	assert.Equal(t, "order-management.ts", StubFileName(module, typeScriptOpts()))
	assert.Equal(t, "order-management.mjs", StubFileName(module, Options{JavaScriptExtension: ".mjs"}))
}
