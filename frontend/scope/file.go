package scope

import (
	"iter"
	"slices"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

// FileScope is the typed scope tree of one file of a program
type FileScope struct {
	Path    string
	Program *syntax.Program
	// Dependencies are the paths of the files this one imports, in order of appearance
	Dependencies []string
	Table        *SymbolTable
	// Types holds the final type of every node of the file
	Types  map[syntax.Node]types.Type
	Errors *ilerr.Errors
}

func NewFileScope(path string, program *syntax.Program, dependencies []string) *FileScope {
	return &FileScope{
		Path:         path,
		Program:      program,
		Dependencies: dependencies,
		Types:        make(map[syntax.Node]types.Type),
	}
}

// Root is the scope of the top-level declarations of the file
func (f *FileScope) Root() *Scope {
	if f.Table == nil {
		return nil
	}
	return f.Table.Root()
}

// Lookup finds a top-level binding of the file
func (f *FileScope) Lookup(name string) (*Binding, bool) {
	if f.Table == nil {
		return nil, false
	}
	return f.Root().Binding(name)
}

// TypeOf returns the final type of node
func (f *FileScope) TypeOf(node syntax.Node) (types.Type, bool) {
	t, ok := f.Types[node]
	return t, ok
}

// Exports are the exported top-level bindings of the file, in declaration order
func (f *FileScope) Exports() []*Binding {
	if f.Table == nil {
		return nil
	}
	return slices.DeleteFunc(slices.Clone(f.Root().Bindings()), func(b *Binding) bool {
		return !b.Exported
	})
}

// ExportedTypes are the exported type declarations of the file
func (f *FileScope) ExportedTypes() []*TypeDeclaration {
	if f.Table == nil {
		return nil
	}
	return slices.DeleteFunc(f.Root().TypeDeclarations(), func(d *TypeDeclaration) bool {
		return !d.Exported
	})
}

// Imports lists the import statements at the top level of program
func Imports(program *syntax.Program) []*syntax.Import {
	var imports []*syntax.Import
	for _, stmt := range program.Statements {
		if imp, ok := stmt.(*syntax.Import); ok {
			imports = append(imports, imp)
		}
	}
	return imports
}

// GlobalScope is every FileScope of a program, dependencies first
type GlobalScope struct {
	files  []*FileScope
	byPath map[string]*FileScope
}

func NewGlobalScope() *GlobalScope {
	return &GlobalScope{byPath: make(map[string]*FileScope)}
}

// Add appends f, which must come after every file it depends on
func (g *GlobalScope) Add(f *FileScope) {
	g.files = append(g.files, f)
	g.byPath[f.Path] = f
}

func (g *GlobalScope) File(path string) (*FileScope, bool) {
	f, ok := g.byPath[path]
	return f, ok
}

func (g *GlobalScope) Files() []*FileScope { return g.files }

func (g *GlobalScope) All() iter.Seq2[string, *FileScope] {
	return func(yield func(string, *FileScope) bool) {
		for _, f := range g.files {
			if !yield(f.Path, f) {
				return
			}
		}
	}
}

// Errors collects the errors of every file
func (g *GlobalScope) Errors() *ilerr.Errors {
	errs := &ilerr.Errors{}
	for _, f := range g.files {
		errs = errs.With(f.Errors.Errors()...)
	}
	return errs
}
