package template_refs

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"strings"

	"github.com/tristendillon/modelsync/core/logger"
)

// TemplateGenerator writes the Go source that declares the TEMPLATES refs for
// a walked template tree.
type TemplateGenerator struct {
	walker      *TemplateWalker
	packageName string
}

func NewTemplateGenerator(walker *TemplateWalker) *TemplateGenerator {
	return &TemplateGenerator{walker: walker, packageName: "template_engine"}
}

func (tg *TemplateGenerator) Source() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by modelsync generate-template-refs. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", tg.packageName)
	buf.WriteString("import \"embed\"\n\n")
	buf.WriteString("//go:embed templates\nvar TemplateFS embed.FS\n\n")

	root := tg.walker.GetTemplateTree()
	buf.WriteString("var TEMPLATES = ")
	tg.writeType(&buf, root, false)
	tg.writeValue(&buf, root)
	buf.WriteString("\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format template refs: %w", err)
	}
	return src, nil
}

func (tg *TemplateGenerator) writeType(buf *bytes.Buffer, node *TemplateNode, withRef bool) {
	buf.WriteString("struct {\n")
	if withRef {
		buf.WriteString("Ref TemplateRef\n")
	}
	for _, key := range node.SortedKeys() {
		child := node.Children[key]
		buf.WriteString(key + " ")
		if child.IsDir {
			tg.writeType(buf, child, true)
		} else {
			buf.WriteString("TemplateRef")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}")
}

func (tg *TemplateGenerator) writeValue(buf *bytes.Buffer, node *TemplateNode) {
	buf.WriteString("{\n")
	if node.Path != "" {
		fmt.Fprintf(buf, "Ref: TemplateRef{Path: %q, IsDir: true},\n", node.Path)
	}
	for _, key := range node.SortedKeys() {
		child := node.Children[key]
		buf.WriteString(key + ": ")
		if child.IsDir {
			tg.writeType(buf, child, true)
			tg.writeValue(buf, child)
		} else {
			fmt.Fprintf(buf, "TemplateRef{Path: %q, IsDir: false}", child.Path)
		}
		buf.WriteString(",\n")
	}
	buf.WriteString("}")
}

func (tg *TemplateGenerator) Generate(outputPath string) error {
	src, err := tg.Source()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, src, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

func (tg *TemplateGenerator) PrintTemplateTree() {
	tg.printNode(tg.walker.GetTemplateTree(), 0)
}

func (tg *TemplateGenerator) printNode(node *TemplateNode, depth int) {
	for _, key := range node.SortedKeys() {
		child := node.Children[key]
		suffix := ""
		if child.IsDir {
			suffix = "/"
		}
		logger.Debug("%s%s%s -> %s", strings.Repeat("  ", depth), child.Name, suffix, key)
		if child.IsDir {
			tg.printNode(child, depth+1)
		}
	}
}
