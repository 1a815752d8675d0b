package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"

	"github.com/tristendillon/modelsync/core/models"
)

// documentSchema constrains CUE schema files. Unifying with #Document closes
// the structure and fills in defaults before decoding.
const documentSchema = `
#Property: {
	name:         string & !=""
	type:         "string" | "boolean" | "number" | "reference" | "collection"
	class?:       string
	description?: string
}

#Class: {
	name:         string & !=""
	id?:          string
	ancestor?:    string
	description?: string
	properties:   *[] | [...#Property]
}

#Module: {
	name:    string & !=""
	system:  *false | bool
	classes: *[] | [...#Class]
}

#Document: {
	name:    string
	id?:     string
	modules: [...#Module]
}
`

// Format identifies how a schema document is encoded.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf guesses the format from a path. Directories are CUE packages.
func FormatOf(path string) Format {
	if stat, err := os.Stat(path); err == nil && stat.IsDir() {
		return FormatCUE
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadWorkspace reads and builds the schema document at path.
func LoadWorkspace(path string) (*models.Workspace, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	ws, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	return ws, nil
}

func LoadDocument(path string) (*Document, error) {
	format := FormatOf(path)
	if format == FormatCUE {
		if stat, err := os.Stat(path); err == nil && stat.IsDir() {
			return loadCUEPackage(path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	doc, err := ParseDocument(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument decodes a single document. filename is only used in CUE
// error positions.
func ParseDocument(data []byte, format Format, filename string) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatCUE:
		ctx := cuecontext.New()
		val := ctx.CompileBytes(data, cue.Filename(filename))
		if val.Err() != nil {
			return nil, val.Err()
		}
		return decodeCUE(ctx, val)
	default:
		return nil, fmt.Errorf("unsupported schema format %q", format)
	}
	return &doc, nil
}

func loadCUEPackage(dir string) (*Document, error) {
	insts := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(insts) == 0 {
		return nil, fmt.Errorf("no CUE package in %s", dir)
	}
	if insts[0].Err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, insts[0].Err)
	}

	ctx := cuecontext.New()
	val := ctx.BuildInstance(insts[0])
	if val.Err() != nil {
		return nil, fmt.Errorf("building %s: %w", dir, val.Err())
	}
	return decodeCUE(ctx, val)
}

func decodeCUE(ctx *cue.Context, val cue.Value) (*Document, error) {
	def := ctx.CompileString(documentSchema).LookupPath(cue.ParsePath("#Document"))
	if def.Err() != nil {
		return nil, def.Err()
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
