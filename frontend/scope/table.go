package scope

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
	"github.com/cottand/sema/internal/log"
	"github.com/cottand/sema/util"
)

// SymbolTable is the arena of every Scope of one file, together with the path of
// scopes from the root to the scope currently being walked.
//
// Scopes are only ever appended to the arena: leaving a scope pops it from the path,
// but it stays addressable by its ScopeID.
type SymbolTable struct {
	file    string
	scopes  []*Scope
	path    util.Stack[ScopeID]
	prelude map[string]*Binding
	// declared holds every type declared or imported in this file, by name
	declared map[string]*TypeDeclaration
	next     nextBinding
	logger   *slog.Logger
}

// nextBinding are the flags of the next bindings to be created. They are consumed,
// and reset, by the next call to Templates or Declare.
type nextBinding struct {
	exported bool
	implicit bool
	imported bool
}

// NewSymbolTable creates a table for the file at path, with the root scope of the
// file already entered. prelude bindings are resolved after every scope of the file.
func NewSymbolTable(path string, program *syntax.Program, prelude []*Binding) *SymbolTable {
	t := &SymbolTable{
		file:     path,
		prelude:  make(map[string]*Binding, len(prelude)),
		declared: make(map[string]*TypeDeclaration),
		logger:   log.Section(log.SectionScope).With("file", path),
	}
	for _, b := range prelude {
		b.Scope = NoScope
		t.prelude[b.Name] = b
	}
	var node syntax.Node
	if program != nil {
		node = program
	}
	t.push(KindFile, node)
	return t
}

// File is the path of the file the table belongs to
func (t *SymbolTable) File() string { return t.file }

func (t *SymbolTable) Scope(id ScopeID) *Scope {
	return t.scopes[id]
}

// Root is the scope of the file
func (t *SymbolTable) Root() *Scope {
	return t.scopes[0]
}

func (t *SymbolTable) CurrentID() ScopeID {
	id, ok := t.path.Peek()
	if !ok {
		panic("symbol table has no current scope")
	}
	return id
}

func (t *SymbolTable) Current() *Scope {
	return t.scopes[t.CurrentID()]
}

// Len is how many scopes were ever entered, including the file's. Scopes entered
// later have higher IDs.
func (t *SymbolTable) Len() int {
	return len(t.scopes)
}

// Depth is how many scopes are currently entered, including the file's
func (t *SymbolTable) Depth() int {
	return t.path.Len()
}

func (t *SymbolTable) push(kind Kind, node syntax.Node) *Scope {
	parent := NoScope
	if current, ok := t.path.Peek(); ok {
		parent = current
	}
	s := newScope(ScopeID(len(t.scopes)), kind, parent, node)
	t.scopes = append(t.scopes, s)
	if parent != NoScope {
		t.scopes[parent].Children = append(t.scopes[parent].Children, s.ID)
	}
	t.path.Push(s.ID)
	t.logger.Debug("entered scope", "kind", kind, "id", s.ID, "depth", t.path.Len())
	return s
}

func (t *SymbolTable) pop(kinds ...Kind) *Scope {
	current := t.Current()
	if !slices.Contains(kinds, current.Kind) {
		panic(fmt.Sprintf("cannot leave %v scope %d as any of %v", current.Kind, current.ID, kinds))
	}
	if current.Parent == NoScope {
		panic("cannot leave the root scope of a file")
	}
	t.path.Pop()
	t.logger.Debug("left scope", "kind", current.Kind, "id", current.ID)
	return current
}

// EnterBlock opens a scope for a block. Directly inside an abstraction, the block is
// the body of the function.
func (t *SymbolTable) EnterBlock(node syntax.Node) *Scope {
	kind := KindBlock
	if t.Current().Kind == KindAbstraction {
		kind = KindBody
	}
	return t.push(kind, node)
}

func (t *SymbolTable) LeaveBlock() *Scope {
	return t.pop(KindBlock, KindBody)
}

// EnterAbstraction opens the scope of the parameters of a function
func (t *SymbolTable) EnterAbstraction(node syntax.Node) *Scope {
	return t.push(KindAbstraction, node)
}

// LeaveAbstraction closes the scope of a function, after merging the scope of its
// body into it
func (t *SymbolTable) LeaveAbstraction() *Scope {
	current := t.pop(KindAbstraction)
	t.reduce(current)
	return current
}

func (t *SymbolTable) EnterModule(node *syntax.Module) *Scope {
	return t.push(KindModule, node)
}

func (t *SymbolTable) LeaveModule() *Scope {
	return t.pop(KindModule)
}

// reduce merges the single child of s into s. More than one child means the
// scope stack was not walked in order.
func (t *SymbolTable) reduce(s *Scope) {
	live := slices.DeleteFunc(slices.Clone(s.Children), func(id ScopeID) bool {
		return t.scopes[id].MergedInto != NoScope
	})
	if len(live) != 1 {
		panic(fmt.Sprintf("cannot reduce %v scope %d with %d nested scopes", s.Kind, s.ID, len(live)))
	}
	child := t.scopes[live[0]]
	for _, b := range child.bindings {
		s.add(b)
	}
	for _, tmpl := range child.templates {
		s.templates = append(s.templates, tmpl)
	}
	for name, decl := range child.typeDecls {
		s.typeDecls[name] = decl
	}
	for _, grandchild := range child.Children {
		t.scopes[grandchild].Parent = s.ID
	}
	s.Children = child.Children
	child.Children = nil
	child.MergedInto = s.ID
	t.logger.Debug("reduced scope", "from", child.ID, "into", s.ID)
}

// Resolve walks outwards from the current scope looking for name. After the scopes of
// the file, the prelude is searched and, if name is a built-in type, a binding for the
// type itself is returned.
func (t *SymbolTable) Resolve(name string) (*Binding, bool) {
	if b, ok := t.ResolveWithin(name, t.path.Len()); ok {
		return b, true
	}
	if b, ok := t.prelude[name]; ok {
		return b, true
	}
	if slices.Contains(types.PrimitiveNames, name) {
		return primitiveBinding(name), true
	}
	return nil, false
}

// ResolveWithin only searches the current scope and depth of its ancestors
func (t *SymbolTable) ResolveWithin(name string, depth int) (*Binding, bool) {
	id := t.CurrentID()
	for hops := 0; hops <= depth && id != NoScope; hops++ {
		s := t.scopes[id]
		if b, ok := s.lookup(name); ok {
			return b, true
		}
		id = s.Parent
	}
	return nil, false
}

func primitiveBinding(name string) *Binding {
	return &Binding{
		Name:  name,
		Type:  types.Parametric{Name: types.TypeName, Params: []types.Type{types.Parametric{Name: name}}},
		Scope: NoScope,
	}
}

// duplicateDepth is how far up a redeclaration counts as a duplicate: a function body
// shares its names with the parameters of the function
func (t *SymbolTable) duplicateDepth() int {
	if t.Current().Kind == KindBody {
		return 1
	}
	return 0
}

func (t *SymbolTable) checkDuplicate(name string, node syntax.Node) ilerr.IleError {
	existing, ok := t.ResolveWithin(name, t.duplicateDepth())
	if !ok {
		return nil
	}
	return ilerr.New(ilerr.NewDuplicateBinding{
		Loc:      ilerr.At(t.file, node),
		Name:     name,
		Previous: existing.Node,
	})
}

// SetNextExported marks the next bindings as exported
func (t *SymbolTable) SetNextExported() { t.next.exported = true }

// SetNextImplicit marks the next bindings as implicit
func (t *SymbolTable) SetNextImplicit() { t.next.implicit = true }

// SetNextImported marks the next bindings as imported
func (t *SymbolTable) SetNextImported() { t.next.imported = true }

func (t *SymbolTable) consumeNext() nextBinding {
	next := t.next
	t.next = nextBinding{}
	return next
}

// Templates creates a BindingTemplate in the current scope for every name bound by
// pattern, consuming the next-binding flags. Names already declared in the current
// scope (or in the parameters of the current function) are reported as duplicates.
func (t *SymbolTable) Templates(pattern syntax.Pattern, fresher *types.Fresher) ([]*BindingTemplate, *ilerr.Errors) {
	next := t.consumeNext()
	var errs *ilerr.Errors
	var created []*BindingTemplate
	current := t.Current()
	for _, ident := range syntax.PatternNames(pattern) {
		if err := t.checkDuplicate(ident.Name, ident); err != nil {
			errs = errs.With(err)
			continue
		}
		if next.exported && !current.CanExport() {
			errs = errs.With(ilerr.New(ilerr.NewExportOutsideScope{Loc: ilerr.At(t.file, ident), Name: ident.Name}))
		}
		tmpl := &BindingTemplate{
			Name:     ident.Name,
			Type:     fresher.Fresh(ident.Name),
			Node:     ident,
			Exported: next.exported && current.CanExport(),
			Implicit: next.implicit,
		}
		current.templates = append(current.templates, tmpl)
		created = append(created, tmpl)
		t.logger.Debug("created template", "name", tmpl.Name, "type", tmpl.Type)
	}
	return created, errs
}

// Bind commits the type of a template of the current scope
func (t *SymbolTable) Bind(tmpl *BindingTemplate, typ types.Type, quantified []types.VarID) *Binding {
	b := &Binding{
		Name:       tmpl.Name,
		Type:       typ,
		Quantified: quantified,
		Exported:   tmpl.Exported,
		Implicit:   tmpl.Implicit,
		Node:       tmpl.Node,
	}
	t.Current().add(b)
	t.logger.Debug("bound", "name", b.Name, "type", b.Type)
	return b
}

// Declare adds b to the current scope, consuming the next-binding flags
func (t *SymbolTable) Declare(b *Binding) ilerr.IleError {
	next := t.consumeNext()
	if err := t.checkDuplicate(b.Name, b.Node); err != nil {
		return err
	}
	current := t.Current()
	b.Exported = b.Exported || next.exported
	b.Implicit = b.Implicit || next.implicit
	b.Imported = b.Imported || next.imported
	if b.Exported && !current.CanExport() {
		b.Exported = false
		current.add(b)
		return ilerr.New(ilerr.NewExportOutsideScope{Loc: ilerr.At(t.file, b.Node), Name: b.Name})
	}
	current.add(b)
	t.logger.Debug("declared", "name", b.Name, "type", b.Type)
	return nil
}

// DeclareType adds decl to the current scope
func (t *SymbolTable) DeclareType(decl *TypeDeclaration) ilerr.IleError {
	current := t.Current()
	if _, ok := current.TypeDeclaration(decl.Name); ok {
		return ilerr.New(ilerr.NewDuplicateBinding{
			Loc:  ilerr.At(t.file, decl.Node),
			Name: decl.Name,
		})
	}
	if decl.Exported && !current.CanExport() {
		decl.Exported = false
		current.typeDecls[decl.Name] = decl
		return ilerr.New(ilerr.NewExportOutsideScope{Loc: ilerr.At(t.file, decl.Node), Name: decl.Name})
	}
	current.typeDecls[decl.Name] = decl
	if _, ok := t.declared[decl.Name]; !ok {
		t.declared[decl.Name] = decl
	}
	return nil
}

// ResolveType looks for the declaration of the type name from the current scope outwards,
// then among every type declared in the file
func (t *SymbolTable) ResolveType(name string) (*TypeDeclaration, bool) {
	for id := t.CurrentID(); id != NoScope; id = t.scopes[id].Parent {
		if decl, ok := t.scopes[id].TypeDeclaration(name); ok {
			return decl, true
		}
	}
	decl, ok := t.declared[name]
	return decl, ok
}

// CheckImport fails unless imports are allowed in the current scope
func (t *SymbolTable) CheckImport(node *syntax.Import) ilerr.IleError {
	if t.Current().Kind == KindFile {
		return nil
	}
	return ilerr.New(ilerr.NewImportOutsideScope{Loc: ilerr.At(t.file, node), ImportPath: node.Path})
}

// Visible lists every binding visible from the current scope, innermost first,
// without the prelude
func (t *SymbolTable) Visible() []*Binding {
	var visible []*Binding
	for id := t.CurrentID(); id != NoScope; id = t.scopes[id].Parent {
		visible = append(visible, t.scopes[id].bindings...)
	}
	return visible
}
