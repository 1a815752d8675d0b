package template_engine

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/shared"
)

type TemplateRef struct {
	Path  string
	IsDir bool
}

func (tr TemplateRef) IsFile() bool {
	return !tr.IsDir
}

func (tr TemplateRef) IsDirectory() bool {
	return tr.IsDir
}

type TemplateEngine struct {
	funcMap template.FuncMap
	parsed  map[string]*template.Template
}

// Templates name things the way the generated code does.
func getDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"title":  shared.ToTitle,
		"pascal": shared.ToPascalCase,
		"kebab":  shared.ToKebabCase,
	}
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: getDefaultFuncMap(),
		parsed:  make(map[string]*template.Template),
	}
}

// Render executes a file template and returns its output.
func (te *TemplateEngine) Render(templateRef TemplateRef, data interface{}) (string, error) {
	if templateRef.IsDirectory() {
		return "", fmt.Errorf("cannot render directory reference: %s", templateRef.Path)
	}

	tmpl, err := te.load(path.Join("templates", templateRef.Path))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateRef.Path, err)
	}
	return buf.String(), nil
}

// RenderLines renders a template and drops the single trailing newline that
// template files end with, so blocks can be joined line by line.
func (te *TemplateEngine) RenderLines(templateRef TemplateRef, data interface{}) (string, error) {
	out, err := te.Render(templateRef, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(out, "\n"), nil
}

func (te *TemplateEngine) load(templatePath string) (*template.Template, error) {
	if tmpl, ok := te.parsed[templatePath]; ok {
		return tmpl, nil
	}

	content, err := TemplateFS.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	tmpl, err := template.New(path.Base(templatePath)).Funcs(te.funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}
	te.parsed[templatePath] = tmpl
	return tmpl, nil
}

// GenerateFolder renders every file under a directory reference into
// outputDir. Files ending in .tmpl are executed and lose the suffix, the rest
// are copied as is.
func (te *TemplateEngine) GenerateFolder(templateRef TemplateRef, outputDir string, data interface{}) error {
	if templateRef.IsFile() {
		return fmt.Errorf("cannot generate folder from file reference: %s", templateRef.Path)
	}

	templateDir := path.Join("templates", templateRef.Path)
	logger.Debug("Generating folder from template reference: %s", templateDir)

	return fs.WalkDir(TemplateFS, templateDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if p == templateDir {
			return nil
		}

		relPath := strings.TrimPrefix(p, templateDir+"/")
		outputPath := filepath.Join(outputDir, filepath.FromSlash(relPath))

		if d.IsDir() {
			return os.MkdirAll(outputPath, os.ModePerm)
		}

		logger.Debug("Generating file from path: %s", p)
		return te.generateFileFromPath(p, outputPath, data)
	})
}

func (te *TemplateEngine) generateFileFromPath(templatePath, outputPath string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if !strings.HasSuffix(templatePath, ".tmpl") {
		content, err := TemplateFS.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", templatePath, err)
		}
		return os.WriteFile(outputPath, content, 0644)
	}

	tmpl, err := te.load(templatePath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templatePath, err)
	}

	return os.WriteFile(strings.TrimSuffix(outputPath, ".tmpl"), buf.Bytes(), 0644)
}
