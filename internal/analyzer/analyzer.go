package analyzer

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// FunctionInfo describes a free function or method found in a source file.
type FunctionInfo struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Signature string `json:"signature,omitempty"`
}

// ClassInfo describes a class or struct definition.
type ClassInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // class or struct
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// ProjectInfo is the surface-level inventory of a C++ source set. It feeds
// the project detail endpoint and gives callers a sense of what there is
// to test before they submit a generation run.
type ProjectInfo struct {
	Files     []string       `json:"files"`
	Functions []FunctionInfo `json:"functions"`
	Classes   []ClassInfo    `json:"classes"`
	Includes  []string       `json:"includes"`
	LineCount int            `json:"line_count"`
}

// Analyzer extracts functions, classes and includes from C++ sources using
// tree-sitter. It is informational only; a file that fails to parse is
// skipped rather than failing the analysis.
type Analyzer struct {
	tsParser *sitter.Parser
}

func New() *Analyzer {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &Analyzer{tsParser: p}
}

// Analyze walks every file of the source set. Header and implementation
// files are both inspected; test files under a test_ prefix are not
// special-cased since ingestion filters them out already.
func (a *Analyzer) Analyze(ctx context.Context, source testgen.SourceSet) *ProjectInfo {
	info := &ProjectInfo{Files: source.Files()}
	includeSet := map[string]struct{}{}

	for _, name := range info.Files {
		content := []byte(source[name])
		info.LineCount += strings.Count(source[name], "\n") + 1

		tree, err := a.tsParser.ParseCtx(ctx, nil, content)
		if err != nil {
			continue
		}
		a.walkFile(tree.RootNode(), content, name, info, includeSet)
		tree.Close()
	}

	for inc := range includeSet {
		info.Includes = append(info.Includes, inc)
	}
	sort.Strings(info.Includes)
	return info
}

func (a *Analyzer) walkFile(root *sitter.Node, src []byte, file string, info *ProjectInfo, includes map[string]struct{}) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "preproc_include":
			if path := includePath(n, src); path != "" {
				includes[path] = struct{}{}
			}
		case "function_definition":
			if fn, ok := extractFunction(n, src, file); ok {
				info.Functions = append(info.Functions, fn)
			}
		case "class_specifier", "struct_specifier":
			if cls, ok := extractClass(n, src, file); ok {
				info.Classes = append(info.Classes, cls)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func includePath(node *sitter.Node, src []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string_literal" || child.Type() == "system_lib_string" {
			return strings.Trim(child.Content(src), `"<>`)
		}
	}
	return ""
}

func extractFunction(node *sitter.Node, src []byte, file string) (FunctionInfo, bool) {
	decl := findChild(node, "function_declarator")
	if decl == nil {
		return FunctionInfo{}, false
	}
	name := declaratorName(decl, src)
	if name == "" {
		return FunctionInfo{}, false
	}
	return FunctionInfo{
		Name:      name,
		File:      file,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Signature: strings.TrimSpace(decl.Content(src)),
	}, true
}

func extractClass(node *sitter.Node, src []byte, file string) (ClassInfo, bool) {
	// Bare forward declarations have no body; skip them.
	if findChild(node, "field_declaration_list") == nil {
		return ClassInfo{}, false
	}
	name := ""
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "type_identifier" {
			name = child.Content(src)
			break
		}
	}
	if name == "" {
		return ClassInfo{}, false
	}
	kind := "class"
	if node.Type() == "struct_specifier" {
		kind = "struct"
	}
	return ClassInfo{
		Name:      name,
		Kind:      kind,
		File:      file,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}, true
}

// declaratorName digs the identifier out of a function_declarator, which
// may nest qualified names for methods defined out of line.
func declaratorName(decl *sitter.Node, src []byte) string {
	for i := 0; i < int(decl.ChildCount()); i++ {
		child := decl.Child(i)
		switch child.Type() {
		case "identifier", "field_identifier", "qualified_identifier", "destructor_name", "operator_name":
			return child.Content(src)
		}
	}
	return ""
}

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}
