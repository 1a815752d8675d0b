package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/shared"
	"github.com/tristendillon/modelsync/core/template_engine"
)

// StubMerger produces the next content of a module's stub file. previous is
// nil when the file does not exist yet.
type StubMerger interface {
	Merge(module *models.Module, previous *string) (string, error)
}

// PatternMerger patches class headers in place with a regular expression and
// leaves everything else in the file alone. Classes whose header cannot be
// found get a fresh skeleton appended, even if that duplicates a class whose
// header was reformatted by hand.
type PatternMerger struct {
	opts   Options
	engine *template_engine.TemplateEngine
}

func NewPatternMerger(opts Options) *PatternMerger {
	return &PatternMerger{
		opts:   opts,
		engine: template_engine.NewTemplateEngine(),
	}
}

func classHeader(class *models.ClassSpec) string {
	return fmt.Sprintf("class %s extends %s", shared.ToPascalCase(class.Name), extendsName(class))
}

func headerPattern(class *models.ClassSpec) *regexp.Regexp {
	return regexp.MustCompile(`class\s+` + regexp.QuoteMeta(shared.ToPascalCase(class.Name)) + `\s+(extends\s+\w+\s+)?\{`)
}

func (m *PatternMerger) Merge(module *models.Module, previous *string) (string, error) {
	if previous == nil || *previous == "" {
		return m.coldStart(module)
	}

	content := *previous
	for _, class := range module.Classes {
		pattern := headerPattern(class)
		if pattern.MatchString(content) {
			content = pattern.ReplaceAllLiteralString(content, classHeader(class)+" {")
			continue
		}

		skeleton, err := m.skeleton(class)
		if err != nil {
			return "", err
		}
		content += skeleton + "\n"
	}
	return content, nil
}

func (m *PatternMerger) coldStart(module *models.Module) (string, error) {
	header, err := m.engine.RenderLines(template_engine.TEMPLATES.STUBS.HEADER, map[string]interface{}{
		"TypeScript": m.opts.TypeScript,
		"RequireJS":  m.opts.UseRequire,
		"Module":     module.Name,
		"Library":    m.opts.Library,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render stub header: %w", err)
	}

	blocks := []string{header}
	for _, class := range module.Classes {
		skeleton, err := m.skeleton(class)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, skeleton)
	}
	return strings.Join(blocks, "\n") + "\n", nil
}

// skeleton renders the block for one class, starting with an empty line and
// without a trailing newline.
func (m *PatternMerger) skeleton(class *models.ClassSpec) (string, error) {
	out, err := m.engine.RenderLines(template_engine.TEMPLATES.STUBS.SKELETON, map[string]interface{}{
		"RequireJS": m.opts.UseRequire,
		"Header":    classHeader(class),
		"Class":     class.Name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render skeleton for %s: %w", class.Name, err)
	}
	return out, nil
}
