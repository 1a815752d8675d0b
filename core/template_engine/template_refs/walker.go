package template_refs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

type TemplateNode struct {
	Name     string                   `json:"name"`
	Path     string                   `json:"path"`
	IsDir    bool                     `json:"is_dir"`
	Children map[string]*TemplateNode `json:"children,omitempty"`
	Parent   *TemplateNode            `json:"-"` // Don't serialize parent to avoid cycles
}

// SortedKeys returns the child keys in a stable order.
func (n *TemplateNode) SortedKeys() []string {
	keys := make([]string, 0, len(n.Children))
	for k := range n.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type TemplateWalker struct {
	fsys        fs.FS
	templateDir string
	rootNode    *TemplateNode
}

// NewTemplateWalker walks templateDir inside fsys. Use os.DirFS for a
// directory on disk.
func NewTemplateWalker(fsys fs.FS, templateDir string) *TemplateWalker {
	return &TemplateWalker{
		fsys:        fsys,
		templateDir: templateDir,
		rootNode: &TemplateNode{
			Name:     "templates",
			Path:     "",
			IsDir:    true,
			Children: make(map[string]*TemplateNode),
		},
	}
}

func (tw *TemplateWalker) Walk() error {
	return fs.WalkDir(tw.fsys, tw.templateDir, tw.walkFunc)
}

func (tw *TemplateWalker) walkFunc(p string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if p == tw.templateDir {
		return nil
	}

	relPath := strings.TrimPrefix(p, tw.templateDir+"/")
	if tw.templateDir == "." {
		relPath = p
	}
	segments := strings.Split(relPath, "/")

	currentNode := tw.rootNode
	for i, segment := range segments[:len(segments)-1] {
		segmentKey := NormalizeKey(segment)
		if currentNode.Children[segmentKey] == nil {
			currentNode.Children[segmentKey] = &TemplateNode{
				Name:     segment,
				Path:     path.Join(segments[:i+1]...),
				IsDir:    true,
				Children: make(map[string]*TemplateNode),
				Parent:   currentNode,
			}
		}
		currentNode = currentNode.Children[segmentKey]
	}

	finalSegment := segments[len(segments)-1]
	finalKey := NormalizeKey(finalSegment)

	if existing := currentNode.Children[finalKey]; existing != nil && existing.IsDir && d.IsDir() {
		return nil
	}

	node := &TemplateNode{
		Name:   finalSegment,
		Path:   relPath,
		IsDir:  d.IsDir(),
		Parent: currentNode,
	}

	if d.IsDir() {
		node.Children = make(map[string]*TemplateNode)
	}

	currentNode.Children[finalKey] = node

	return nil
}

// NormalizeKey turns a file or directory name into the identifier used for
// it in the generated TEMPLATES struct.
func NormalizeKey(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}

	result := strings.ToUpper(name)
	result = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, result)

	if len(result) > 0 && (result[0] >= '0' && result[0] <= '9') {
		result = "_" + result
	}

	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.TrimSuffix(result, "_")

	return result
}

func (tw *TemplateWalker) GetTemplateTree() *TemplateNode {
	return tw.rootNode
}

func (tw *TemplateWalker) GetFileNodes() []*TemplateNode {
	var files []*TemplateNode
	tw.collect(tw.rootNode, func(n *TemplateNode) bool { return !n.IsDir }, &files)
	return files
}

func (tw *TemplateWalker) GetDirectoryNodes() []*TemplateNode {
	var dirs []*TemplateNode
	tw.collect(tw.rootNode, func(n *TemplateNode) bool { return n.IsDir }, &dirs)
	return dirs
}

func (tw *TemplateWalker) collect(node *TemplateNode, keep func(*TemplateNode) bool, out *[]*TemplateNode) {
	if node.Path != "" && keep(node) {
		*out = append(*out, node)
	}

	for _, key := range node.SortedKeys() {
		tw.collect(node.Children[key], keep, out)
	}
}
