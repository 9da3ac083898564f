package scope

import (
	"cmp"
	"slices"

	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

// ScopeID addresses a Scope inside the arena of a SymbolTable
type ScopeID int

// NoScope is the parent of the root scope of a file
const NoScope ScopeID = -1

// Kind enumerates supported scope categories.
type Kind uint8

const (
	KindInvalid     Kind = iota
	KindFile             // root of a file
	KindModule           // module declaration
	KindAbstraction      // function parameters
	KindBody             // function body, merged into its abstraction when it closes
	KindBlock            // any other block
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindModule:
		return "module"
	case KindAbstraction:
		return "abstraction"
	case KindBody:
		return "body"
	case KindBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Binding is a name whose type is known
type Binding struct {
	Name string
	Type types.Type
	// Quantified are the variables of Type which are instantiated afresh on every use
	Quantified []types.VarID
	Exported   bool
	// Implicit bindings are function parameters and comprehension generators
	Implicit bool
	Imported bool
	// Pending bindings are templates whose type is not committed yet
	Pending bool
	Node    syntax.Node
	Scope   ScopeID
}

// BindingTemplate is a placeholder for a pattern variable whose name is known before
// its type is. Type is the variable every occurrence of the name is checked against.
type BindingTemplate struct {
	Name     string
	Type     types.Variable
	Node     syntax.Node
	Exported bool
	Implicit bool
}

// Promote checks t against the working type of the template, in g
func (tmpl *BindingTemplate) Promote(t types.Type, g *types.TypeEqualityGraph) (*types.TypeEqualityGraph, error) {
	return g.Equate(tmpl.Type, t)
}

// Member is a field of a class, or an exported binding of a module
type Member struct {
	Name       string
	Type       types.Type
	Quantified []types.VarID
}

// TypeDeclaration describes a named type introduced by a class, enum or module
type TypeDeclaration struct {
	Name string
	// Type is the Parametric type of values of the declared type
	Type types.Parametric
	// Params are the variables of Type.Params
	Params   []types.Variable
	Members  []Member
	Node     syntax.Node
	Exported bool
	Imported bool
}

// Member looks up the member name, instantiated for args (the params of a value of
// the declared type)
func (d *TypeDeclaration) Member(name string, args []types.Type) (Member, bool) {
	i := slices.IndexFunc(d.Members, func(m Member) bool { return m.Name == name })
	if i < 0 {
		return Member{}, false
	}
	member := d.Members[i]
	if len(args) != len(d.Params) || len(args) == 0 {
		return member, true
	}
	subs := make(map[types.VarID]types.Type, len(args))
	for j, param := range d.Params {
		subs[param.ID] = args[j]
	}
	member.Type = types.Substitute(member.Type, subs)
	return member, true
}

// Scope is a lexical scope. Scopes live in the arena of a SymbolTable and
// reference each other by ScopeID.
type Scope struct {
	ID       ScopeID
	Kind     Kind
	Parent   ScopeID
	Node     syntax.Node
	Children []ScopeID
	// MergedInto is the scope this one was reduced into, or NoScope
	MergedInto ScopeID

	bindings  []*Binding
	index     map[string]int
	templates []*BindingTemplate
	typeDecls map[string]*TypeDeclaration
}

func newScope(id ScopeID, kind Kind, parent ScopeID, node syntax.Node) *Scope {
	return &Scope{
		ID:         id,
		Kind:       kind,
		Parent:     parent,
		Node:       node,
		MergedInto: NoScope,
		index:      make(map[string]int),
		typeDecls:  make(map[string]*TypeDeclaration),
	}
}

// Bindings in the order they were declared
func (s *Scope) Bindings() []*Binding { return s.bindings }

func (s *Scope) Binding(name string) (*Binding, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.bindings[i], true
}

func (s *Scope) Templates() []*BindingTemplate { return s.templates }

func (s *Scope) Template(name string) (*BindingTemplate, bool) {
	i := slices.IndexFunc(s.templates, func(t *BindingTemplate) bool { return t.Name == name })
	if i < 0 {
		return nil, false
	}
	return s.templates[i], true
}

func (s *Scope) TypeDeclaration(name string) (*TypeDeclaration, bool) {
	decl, ok := s.typeDecls[name]
	return decl, ok
}

// TypeDeclarations in no particular order
func (s *Scope) TypeDeclarations() []*TypeDeclaration {
	decls := make([]*TypeDeclaration, 0, len(s.typeDecls))
	for _, decl := range s.typeDecls {
		decls = append(decls, decl)
	}
	slices.SortFunc(decls, func(a, b *TypeDeclaration) int { return cmp.Compare(a.Name, b.Name) })
	return decls
}

// CanExport returns whether declarations in s may be exported
func (s *Scope) CanExport() bool {
	return s.Kind == KindFile || s.Kind == KindModule
}

func (s *Scope) lookup(name string) (*Binding, bool) {
	if b, ok := s.Binding(name); ok {
		return b, true
	}
	if tmpl, ok := s.Template(name); ok {
		return &Binding{
			Name:     tmpl.Name,
			Type:     tmpl.Type,
			Exported: tmpl.Exported,
			Implicit: tmpl.Implicit,
			Pending:  true,
			Node:     tmpl.Node,
			Scope:    s.ID,
		}, true
	}
	return nil, false
}

func (s *Scope) add(b *Binding) {
	b.Scope = s.ID
	if i, ok := s.index[b.Name]; ok {
		s.bindings[i] = b
	} else {
		s.index[b.Name] = len(s.bindings)
		s.bindings = append(s.bindings, b)
	}
	s.removeTemplate(b.Name)
}

func (s *Scope) removeTemplate(name string) {
	s.templates = slices.DeleteFunc(s.templates, func(t *BindingTemplate) bool { return t.Name == name })
}
