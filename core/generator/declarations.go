package generator

import (
	"fmt"
	"strings"

	"github.com/tristendillon/modelsync/core/config"
	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/shared"
)

// DeclarationsSuffix keeps the declarations file name distinct from the stub
// file name, otherwise the type checker treats foo.d.ts as the compiled form
// of foo.ts and ignores one of them.
const DeclarationsSuffix = "rt"

// Options are the output settings generation depends on.
type Options struct {
	Library             string
	TypeScript          bool
	JavaScriptExtension string
	UseRequire          bool
}

func OptionsFromConfig(out config.Output) Options {
	return Options{
		Library:             out.Library,
		TypeScript:          out.TypeScript,
		JavaScriptExtension: out.JavaScriptExtension,
		UseRequire:          out.UseRequire,
	}
}

func (o Options) StubExtension() string {
	return config.Output{TypeScript: o.TypeScript, JavaScriptExtension: o.JavaScriptExtension}.StubExtension()
}

func DeclarationsFileName(module *models.Module) string {
	return fmt.Sprintf("%s.%s.d.ts", shared.ToKebabCase(module.Name), DeclarationsSuffix)
}

func StubFileName(module *models.Module, opts Options) string {
	return fmt.Sprintf("%s.%s", shared.ToKebabCase(module.Name), opts.StubExtension())
}

func extendsName(class *models.ClassSpec) string {
	if class.Ancestor == nil {
		return "Entity"
	}
	return shared.ToPascalCase(class.Ancestor.Name)
}

func appendDescription(lines []string, indent, description string) []string {
	if description == "" {
		return lines
	}
	parts := strings.Split(description, "\n")
	if len(parts) == 1 {
		return append(lines, indent+"/** "+description+" */")
	}
	lines = append(lines, indent+"/**")
	for _, part := range parts {
		lines = append(lines, indent+" * "+part)
	}
	return append(lines, indent+" */")
}

// GenerateDeclarations renders the always-regenerated declarations file for
// a module. The output depends only on the module and opts.
func GenerateDeclarations(module *models.Module, opts Options) (string, error) {
	lines := []string{
		"/* GENERATED FILE - DO NOT EDIT */",
		"",
		fmt.Sprintf("import { Stage, Entity, ClassSpec, Property, PrimitiveValue, ReferenceValue, InversedSet } from '%s';", opts.Library),
		"",
		fmt.Sprintf("declare module './%s' {", shared.ToKebabCase(module.Name)),
	}

	for _, class := range module.Classes {
		className := shared.ToPascalCase(class.Name)
		header := fmt.Sprintf("    interface %s extends %s {", className, extendsName(class))
		props := class.AllProperties()

		decls := make([]Declaration, len(props))
		for i, prop := range props {
			d, err := Declare(prop)
			if err != nil {
				return "", fmt.Errorf("class %s: %w", class.Name, err)
			}
			decls[i] = d
		}

		lines = append(lines, "")
		lines = appendDescription(lines, "    ", class.Description)
		lines = append(lines, header)
		for i, prop := range props {
			lines = appendDescription(lines, "        ", prop.Description)
			lines = append(lines, "        "+decls[i].Field)
		}
		lines = append(lines, "    }")

		lines = append(lines, fmt.Sprintf("    // %s instance metadata", className), header)
		for _, d := range decls {
			if d.Meta != "" {
				lines = append(lines, "        "+d.Meta)
			}
		}
		lines = append(lines, "    }")

		lines = append(lines,
			fmt.Sprintf("    // %s class metadata", className),
			fmt.Sprintf("    namespace %s {", className),
			fmt.Sprintf("        /** %s class spec ID (%s). */", class.Name, class.ID),
			"        const classSpecId: string;",
			"        function classSpec(stage: Stage): ClassSpec;",
		)
		for _, prop := range props {
			lines = append(lines, fmt.Sprintf("        const %s_prop: Property;", shared.ToCamelCase(prop.Name)))
		}
		lines = append(lines, "    }")
	}

	lines = append(lines, "}")
	return strings.Join(lines, "\n") + "\n", nil
}
