package template_engine

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRefsExist(t *testing.T) {
	refs := []TemplateRef{
		TEMPLATES.INIT.Ref,
		TEMPLATES.INIT.SCHEMA_YAML,
		TEMPLATES.STUBS.Ref,
		TEMPLATES.STUBS.HEADER,
		TEMPLATES.STUBS.SKELETON,
	}
	for _, ref := range refs {
		info, err := fs.Stat(TemplateFS, path.Join("templates", ref.Path))
		require.NoError(t, err, ref.Path)
		assert.Equal(t, ref.IsDirectory(), info.IsDir(), ref.Path)
	}
}

func TestRenderHeader(t *testing.T) {
	engine := NewTemplateEngine()

	out, err := engine.RenderLines(TEMPLATES.STUBS.HEADER, map[string]interface{}{
		"TypeScript": false,
		"RequireJS":  true,
		"Module":     "Sales Orders",
		"Library":    "@frusal/library-for-node",
	})
	require.NoError(t, err)
	assert.Equal(t, "// @ts-check\n/// <reference types=\"./sales-orders.rt\" />\n\n/* GENERATED STUB, remove this comment and take over development of this code. */\n\nconst { session, Entity } = require('@frusal/library-for-node');", out)
}

func TestRenderSkeleton(t *testing.T) {
	engine := NewTemplateEngine()

	out, err := engine.RenderLines(TEMPLATES.STUBS.SKELETON, map[string]interface{}{
		"RequireJS": true,
		"Header":    "class Order extends Entity",
		"Class":     "order",
	})
	require.NoError(t, err)
	assert.Equal(t, "\nclass Order extends Entity {\n    // nothing yet\n}\nexports.Order = Order;\nsession.factory.registerUserClass(Order);", out)

	out, err = engine.RenderLines(TEMPLATES.STUBS.SKELETON, map[string]interface{}{
		"RequireJS": false,
		"Header":    "class Order extends Entity",
		"Class":     "order",
	})
	require.NoError(t, err)
	assert.Equal(t, "\nexport class Order extends Entity {\n    // nothing yet\n}\nsession.factory.registerUserClass(Order);", out)
}

func TestRenderDirectoryRefFails(t *testing.T) {
	_, err := NewTemplateEngine().Render(TEMPLATES.STUBS.Ref, nil)
	assert.Error(t, err)
}

func TestGenerateFolder(t *testing.T) {
	dir := t.TempDir()
	engine := NewTemplateEngine()

	err := engine.GenerateFolder(TEMPLATES.INIT.Ref, dir, map[string]string{
		"Project":    "shop front",
		"ModuleName": "sales",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "schema.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Shop front schema")
	assert.Contains(t, string(data), "name: ShopFront")
	assert.Contains(t, string(data), "  - name: Sales")

	assert.Error(t, engine.GenerateFolder(TEMPLATES.STUBS.HEADER, dir, nil))
}

func TestFuncMap(t *testing.T) {
	engine := NewTemplateEngine()
	for _, name := range []string{"title", "pascal", "kebab"} {
		assert.Contains(t, engine.funcMap, name)
	}
}
