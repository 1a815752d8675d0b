package template_refs

import (
	"io/fs"
	"path"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/modelsync/core/template_engine"
)

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"header.tmpl":      "HEADER",
		"schema.yaml.tmpl": "SCHEMA_YAML",
		"stubs":            "STUBS",
		"my-file.txt":      "MY_FILE",
		"2fa.tmpl":         "_2FA",
		".gitignore":       "_GITIGNORE",
	}
	for input, want := range tests {
		assert.Equal(t, want, NormalizeKey(input), input)
	}
}

func TestWalkEmbeddedTemplates(t *testing.T) {
	walker := NewTemplateWalker(template_engine.TemplateFS, "templates")
	require.NoError(t, walker.Walk())

	var files []string
	for _, n := range walker.GetFileNodes() {
		files = append(files, n.Path)
	}
	assert.Equal(t, []string{"init/schema.yaml.tmpl", "stubs/header.tmpl", "stubs/skeleton.tmpl"}, files)

	var dirs []string
	for _, n := range walker.GetDirectoryNodes() {
		dirs = append(dirs, n.Path)
	}
	assert.Equal(t, []string{"init", "stubs"}, dirs)
}

func TestGeneratedRefsMatchEmbeddedTree(t *testing.T) {
	walker := NewTemplateWalker(template_engine.TemplateFS, "templates")
	require.NoError(t, walker.Walk())

	src, err := NewTemplateGenerator(walker).Source()
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "package template_engine")
	assert.Contains(t, out, "//go:embed templates")
	assert.Contains(t, out, `TemplateRef{Path: "stubs/header.tmpl", IsDir: false}`)
	assert.Contains(t, out, `TemplateRef{Path: "init", IsDir: true}`)

	for _, n := range walker.GetFileNodes() {
		_, err := fs.Stat(template_engine.TemplateFS, path.Join("templates", n.Path))
		assert.NoError(t, err, n.Path)
	}
}

func TestWalkNestedDirectories(t *testing.T) {
	fsys := fstest.MapFS{
		"tpl/a/b/c.tmpl": {Data: []byte("x")},
		"tpl/top.txt":    {Data: []byte("y")},
	}
	walker := NewTemplateWalker(fsys, "tpl")
	require.NoError(t, walker.Walk())

	root := walker.GetTemplateTree()
	require.Contains(t, root.Children, "A")
	b := root.Children["A"].Children["B"]
	require.NotNil(t, b)
	assert.Equal(t, "a/b", b.Path)
	assert.Equal(t, "a/b/c.tmpl", b.Children["C"].Path)
	assert.Equal(t, "top.txt", root.Children["TOP"].Path)
}
