package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/shared"
)

var (
	ErrUnknownClass     = errors.New("unknown class")
	ErrDuplicateClass   = errors.New("duplicate class")
	ErrInheritanceCycle = errors.New("inheritance cycle")
	ErrNameCollision    = errors.New("generated name collision")
)

// idNamespace scopes the name-based IDs assigned to classes and workspaces
// that do not declare one.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tristendillon/modelsync"))

// Document is the serialized form of a workspace shared by YAML, JSON and CUE
// schema files and the wire protocol.
type Document struct {
	Name    string           `yaml:"name" json:"name"`
	ID      string           `yaml:"id,omitempty" json:"id,omitempty"`
	Modules []ModuleDocument `yaml:"modules" json:"modules"`
}

type ModuleDocument struct {
	Name    string          `yaml:"name" json:"name"`
	System  bool            `yaml:"system,omitempty" json:"system,omitempty"`
	Classes []ClassDocument `yaml:"classes" json:"classes"`
}

type ClassDocument struct {
	Name        string             `yaml:"name" json:"name"`
	ID          string             `yaml:"id,omitempty" json:"id,omitempty"`
	Ancestor    string             `yaml:"ancestor,omitempty" json:"ancestor,omitempty"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Properties  []PropertyDocument `yaml:"properties,omitempty" json:"properties,omitempty"`
}

type PropertyDocument struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Class       string `yaml:"class,omitempty" json:"class,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ClassID returns the ID assigned to a class that does not declare one.
func ClassID(module, class string) string {
	return uuid.NewSHA1(idNamespace, []byte(module+"/"+class)).String()
}

// Build resolves a document into a linked workspace. Class names are unique
// across the workspace, so ancestors and element classes may live in any
// module.
func Build(doc *Document) (*models.Workspace, error) {
	ws := &models.Workspace{ID: doc.ID, Name: doc.Name}
	if ws.ID == "" {
		ws.ID = uuid.NewSHA1(idNamespace, []byte("workspace/"+doc.Name)).String()
	}

	classes := make(map[string]*models.ClassSpec)
	// Generated identifiers and file names must stay distinct after case
	// conversion, keyed by converted name with the schema name as value.
	classNames := make(map[string]string)
	fileNames := make(map[string]string)
	for _, md := range doc.Modules {
		if strings.TrimSpace(md.Name) == "" {
			return nil, errors.New("module without a name")
		}
		if !md.System {
			kebab := shared.ToKebabCase(md.Name)
			if kebab == "" {
				return nil, fmt.Errorf("module %q has no usable file name", md.Name)
			}
			if other, exists := fileNames[kebab]; exists {
				return nil, fmt.Errorf("%w: modules %s and %s both write %s files", ErrNameCollision, other, md.Name, kebab)
			}
			fileNames[kebab] = md.Name
		}
		module := &models.Module{Name: md.Name, System: md.System}
		for _, cd := range md.Classes {
			if strings.TrimSpace(cd.Name) == "" {
				return nil, fmt.Errorf("module %s: class without a name", md.Name)
			}
			if _, exists := classes[cd.Name]; exists {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateClass, cd.Name)
			}
			pascal := shared.ToPascalCase(cd.Name)
			if pascal == "" {
				return nil, fmt.Errorf("module %s: class %q has no usable identifier", md.Name, cd.Name)
			}
			if other, exists := classNames[pascal]; exists {
				return nil, fmt.Errorf("%w: classes %s and %s both generate %s", ErrNameCollision, other, cd.Name, pascal)
			}
			classNames[pascal] = cd.Name
			id := cd.ID
			if id == "" {
				id = ClassID(md.Name, cd.Name)
			}
			class := &models.ClassSpec{ID: id, Name: cd.Name, Description: cd.Description}
			classes[cd.Name] = class
			module.Classes = append(module.Classes, class)
		}
		ws.Modules = append(ws.Modules, module)
	}

	for _, md := range doc.Modules {
		for _, cd := range md.Classes {
			class := classes[cd.Name]
			if cd.Ancestor != "" {
				ancestor, ok := classes[cd.Ancestor]
				if !ok {
					return nil, fmt.Errorf("%w: %s (ancestor of %s)", ErrUnknownClass, cd.Ancestor, cd.Name)
				}
				class.Ancestor = ancestor
			}

			for _, pd := range cd.Properties {
				prop, err := buildProperty(pd, classes)
				if err != nil {
					return nil, fmt.Errorf("class %s: %w", cd.Name, err)
				}
				class.Properties = append(class.Properties, prop)
			}
		}
	}

	for _, class := range classes {
		if err := checkLineage(class); err != nil {
			return nil, err
		}
	}

	return ws, nil
}

func buildProperty(pd PropertyDocument, classes map[string]*models.ClassSpec) (*models.Property, error) {
	if strings.TrimSpace(pd.Name) == "" {
		return nil, errors.New("property without a name")
	}
	kind, err := models.ParseTypeKind(pd.Type)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", pd.Name, err)
	}

	prop := &models.Property{Name: pd.Name, Description: pd.Description, Type: kind}
	if !kind.HasElement() {
		return prop, nil
	}
	if pd.Class == "" {
		return nil, fmt.Errorf("property %s: %s needs a class", pd.Name, kind)
	}
	element, ok := classes[pd.Class]
	if !ok {
		return nil, fmt.Errorf("%w: %s (element of %s)", ErrUnknownClass, pd.Class, pd.Name)
	}
	prop.Element = element
	return prop, nil
}

func checkLineage(class *models.ClassSpec) error {
	seen := map[*models.ClassSpec]bool{}
	for cur := class; cur != nil; cur = cur.Ancestor {
		if seen[cur] {
			return fmt.Errorf("%w: %s", ErrInheritanceCycle, class.Name)
		}
		seen[cur] = true
	}
	return nil
}

// ToDocument is the inverse of Build.
func ToDocument(ws *models.Workspace) *Document {
	doc := &Document{Name: ws.Name, ID: ws.ID}
	for _, module := range ws.Modules {
		md := ModuleDocument{Name: module.Name, System: module.System}
		for _, class := range module.Classes {
			cd := ClassDocument{
				Name:        class.Name,
				ID:          class.ID,
				Ancestor:    class.AncestorName(),
				Description: class.Description,
			}
			for _, prop := range class.Properties {
				pd := PropertyDocument{Name: prop.Name, Type: prop.Type.String(), Description: prop.Description}
				if prop.Element != nil {
					pd.Class = prop.Element.Name
				}
				cd.Properties = append(cd.Properties, pd)
			}
			md.Classes = append(md.Classes, cd)
		}
		doc.Modules = append(doc.Modules, md)
	}
	return doc
}

// Summary lists the classes of every non-system module.
func Summary(ws *models.Workspace) string {
	var sb strings.Builder
	for _, module := range ws.UserModules() {
		fmt.Fprintf(&sb, "Classes in '%s':\n", module.Name)
		for _, class := range module.Classes {
			fmt.Fprintf(&sb, " - %s\n", class.Name)
		}
	}
	return sb.String()
}
