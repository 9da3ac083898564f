package syntax

// Kind is the syntax-type of a Node. The set of kinds is closed: the inference
// driver switches exhaustively on it.
type Kind uint8

const (
	_ Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindIdentifier
	KindList
	KindTuple
	KindMap
	KindApplication
	KindAbstraction
	KindAssignment
	KindBlock
	KindWhen
	KindIf
	KindFor
	KindAccess
	KindAnnotated
	KindImport
	KindModule
	KindClass
	KindEnum

	KindIdentifierPattern
	KindWildcardPattern
	KindLiteralPattern
	KindTuplePattern
	KindListPattern
	KindConstructorPattern

	KindTypeExpr
	KindProgram
)

var kindNames = map[Kind]string{
	KindNumber:             "number",
	KindString:             "string",
	KindBoolean:            "boolean",
	KindIdentifier:         "identifier",
	KindList:               "list",
	KindTuple:              "tuple",
	KindMap:                "map",
	KindApplication:        "application",
	KindAbstraction:        "abstraction",
	KindAssignment:         "assignment",
	KindBlock:              "block",
	KindWhen:               "when",
	KindIf:                 "if",
	KindFor:                "for",
	KindAccess:             "access",
	KindAnnotated:          "annotated",
	KindImport:             "import",
	KindModule:             "module",
	KindClass:              "class",
	KindEnum:               "enum",
	KindIdentifierPattern:  "identifierPattern",
	KindWildcardPattern:    "wildcardPattern",
	KindLiteralPattern:     "literalPattern",
	KindTuplePattern:       "tuplePattern",
	KindListPattern:        "listPattern",
	KindConstructorPattern: "constructorPattern",
	KindTypeExpr:           "type",
	KindProgram:            "program",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Node is the base interface for all syntax nodes handed over by the parser.
type Node interface {
	Positioner
	Kind() Kind
	// Describe is what to call this node in error messages
	Describe() string
	node()
}

// Pattern is a Node which can appear on the left of an assignment,
// as a parameter, or in a when-case.
type Pattern interface {
	Node
	pattern()
}

// Literal is a Number, String or Boolean
type Literal interface {
	Node
	literal()
}

var (
	_ Literal = (*Number)(nil)
	_ Literal = (*String)(nil)
	_ Literal = (*Boolean)(nil)

	_ Node = (*Identifier)(nil)
	_ Node = (*List)(nil)
	_ Node = (*Tuple)(nil)
	_ Node = (*Map)(nil)
	_ Node = (*Application)(nil)
	_ Node = (*Abstraction)(nil)
	_ Node = (*Assignment)(nil)
	_ Node = (*Block)(nil)
	_ Node = (*When)(nil)
	_ Node = (*If)(nil)
	_ Node = (*For)(nil)
	_ Node = (*Access)(nil)
	_ Node = (*Annotated)(nil)
	_ Node = (*Import)(nil)
	_ Node = (*Module)(nil)
	_ Node = (*Class)(nil)
	_ Node = (*Enum)(nil)
	_ Node = (*TypeExpr)(nil)

	_ Pattern = (*IdentifierPattern)(nil)
	_ Pattern = (*WildcardPattern)(nil)
	_ Pattern = (*LiteralPattern)(nil)
	_ Pattern = (*TuplePattern)(nil)
	_ Pattern = (*ListPattern)(nil)
	_ Pattern = (*ConstructorPattern)(nil)
)

// Program is a single parsed file
type Program struct {
	Range
	Path       string
	Statements []Node
}

type Number struct {
	Range
	// Syntax is the literal as written
	Syntax string
}

type String struct {
	Range
	Value string
}

type Boolean struct {
	Range
	Value bool
}

// Identifier (or Variable)
type Identifier struct {
	Range
	Name string
}

type List struct {
	Range
	Elements []Node
}

type Tuple struct {
	Range
	Elements []Node
}

type MapEntry struct {
	Key, Value Node
}

type Map struct {
	Range
	Entries []MapEntry
}

// Application applies Function to a single Argument. A nil Argument is a call
// with no arguments.
type Application struct {
	Range
	Function Node
	Argument Node
}

type Branch struct {
	Params []Pattern
	Body   Node
}

// Abstraction is a function. When it has more than one Branch, the function
// accepts the call shapes of any of its branches.
type Abstraction struct {
	Range
	Branches []Branch
}

type Assignment struct {
	Range
	Pattern  Pattern
	Value    Node
	Exported bool
}

type Block struct {
	Range
	Statements []Node
}

type WhenCase struct {
	// Patterns are alternatives: the case matches when any of them does
	Patterns []Pattern
	Body     Node
}

type When struct {
	Range
	Subject Node
	Cases   []WhenCase
}

type If struct {
	Range
	Condition Node
	Then      Node
	// Else may be nil
	Else Node
}

type Generator struct {
	Pattern  Pattern
	Iterable Node
}

// For is a list comprehension: Body is evaluated for every combination
// of the values of the Generators
type For struct {
	Range
	Generators []Generator
	Body       Node
}

type Access struct {
	Range
	Target Node
	Member string
}

// Annotated is a value with an explicit type
type Annotated struct {
	Range
	Value Node
	Type  *TypeExpr
}

// Import brings Names exported by the file at Path into scope.
// When Alias is not empty, the file is bound as a module named Alias instead.
type Import struct {
	Range
	Path  string
	Names []string
	Alias string
}

type Module struct {
	Range
	Name       string
	Statements []Node
	Exported   bool
}

type Field struct {
	Name string
	Type *TypeExpr
}

type Class struct {
	Range
	Name     string
	Fields   []Field
	Exported bool
}

type Variant struct {
	Name   string
	Fields []*TypeExpr
}

type Enum struct {
	Range
	Name     string
	Variants []Variant
	Exported bool
}

// TypeExpr is a type as written in the source: a name applied to arguments.
//
// `Function<a, b, c>` is a curried function type, and names starting with
// a lowercase letter are type variables.
type TypeExpr struct {
	Range
	Name string
	Args []*TypeExpr
}

type IdentifierPattern struct {
	Range
	Name string
	// Annotation may be nil
	Annotation *TypeExpr
}

type WildcardPattern struct {
	Range
}

type LiteralPattern struct {
	Range
	Literal Literal
}

type TuplePattern struct {
	Range
	Elements []Pattern
}

// ListPattern matches lists which start with Elements. Rest, if not nil,
// binds the remaining elements
type ListPattern struct {
	Range
	Elements []Pattern
	Rest     *IdentifierPattern
}

// ConstructorPattern destructures a value built by a class or enum-variant constructor
type ConstructorPattern struct {
	Range
	Name string
	Args []Pattern
}

func (*Program) Kind() Kind            { return KindProgram }
func (*Number) Kind() Kind             { return KindNumber }
func (*String) Kind() Kind             { return KindString }
func (*Boolean) Kind() Kind            { return KindBoolean }
func (*Identifier) Kind() Kind         { return KindIdentifier }
func (*List) Kind() Kind               { return KindList }
func (*Tuple) Kind() Kind              { return KindTuple }
func (*Map) Kind() Kind                { return KindMap }
func (*Application) Kind() Kind        { return KindApplication }
func (*Abstraction) Kind() Kind        { return KindAbstraction }
func (*Assignment) Kind() Kind         { return KindAssignment }
func (*Block) Kind() Kind              { return KindBlock }
func (*When) Kind() Kind               { return KindWhen }
func (*If) Kind() Kind                 { return KindIf }
func (*For) Kind() Kind                { return KindFor }
func (*Access) Kind() Kind             { return KindAccess }
func (*Annotated) Kind() Kind          { return KindAnnotated }
func (*Import) Kind() Kind             { return KindImport }
func (*Module) Kind() Kind             { return KindModule }
func (*Class) Kind() Kind              { return KindClass }
func (*Enum) Kind() Kind               { return KindEnum }
func (*TypeExpr) Kind() Kind           { return KindTypeExpr }
func (*IdentifierPattern) Kind() Kind  { return KindIdentifierPattern }
func (*WildcardPattern) Kind() Kind    { return KindWildcardPattern }
func (*LiteralPattern) Kind() Kind     { return KindLiteralPattern }
func (*TuplePattern) Kind() Kind       { return KindTuplePattern }
func (*ListPattern) Kind() Kind        { return KindListPattern }
func (*ConstructorPattern) Kind() Kind { return KindConstructorPattern }

func (*Program) Describe() string            { return "program" }
func (*Number) Describe() string             { return "number literal" }
func (*String) Describe() string             { return "string literal" }
func (*Boolean) Describe() string            { return "boolean literal" }
func (*Identifier) Describe() string         { return "variable" }
func (*List) Describe() string               { return "list literal" }
func (*Tuple) Describe() string              { return "tuple literal" }
func (*Map) Describe() string                { return "map literal" }
func (*Application) Describe() string        { return "function call" }
func (*Abstraction) Describe() string        { return "function" }
func (*Assignment) Describe() string         { return "declaration" }
func (*Block) Describe() string              { return "block" }
func (*When) Describe() string               { return "pattern-matching switch" }
func (*If) Describe() string                 { return "if expression" }
func (*For) Describe() string                { return "list comprehension" }
func (*Access) Describe() string             { return "member access" }
func (*Annotated) Describe() string          { return "type annotation" }
func (*Import) Describe() string             { return "import" }
func (*Module) Describe() string             { return "module declaration" }
func (*Class) Describe() string              { return "class declaration" }
func (*Enum) Describe() string               { return "enum declaration" }
func (*TypeExpr) Describe() string           { return "type" }
func (*IdentifierPattern) Describe() string  { return "variable pattern" }
func (*WildcardPattern) Describe() string    { return "discard pattern" }
func (*LiteralPattern) Describe() string     { return "literal pattern" }
func (*TuplePattern) Describe() string       { return "tuple pattern" }
func (*ListPattern) Describe() string        { return "list pattern" }
func (*ConstructorPattern) Describe() string { return "constructor pattern" }

func (*Program) node()            {}
func (*Number) node()             {}
func (*String) node()             {}
func (*Boolean) node()            {}
func (*Identifier) node()         {}
func (*List) node()               {}
func (*Tuple) node()              {}
func (*Map) node()                {}
func (*Application) node()        {}
func (*Abstraction) node()        {}
func (*Assignment) node()         {}
func (*Block) node()              {}
func (*When) node()               {}
func (*If) node()                 {}
func (*For) node()                {}
func (*Access) node()             {}
func (*Annotated) node()          {}
func (*Import) node()             {}
func (*Module) node()             {}
func (*Class) node()              {}
func (*Enum) node()               {}
func (*TypeExpr) node()           {}
func (*IdentifierPattern) node()  {}
func (*WildcardPattern) node()    {}
func (*LiteralPattern) node()     {}
func (*TuplePattern) node()       {}
func (*ListPattern) node()        {}
func (*ConstructorPattern) node() {}

func (*Number) literal()  {}
func (*String) literal()  {}
func (*Boolean) literal() {}

func (*IdentifierPattern) pattern()  {}
func (*WildcardPattern) pattern()    {}
func (*LiteralPattern) pattern()     {}
func (*TuplePattern) pattern()       {}
func (*ListPattern) pattern()        {}
func (*ConstructorPattern) pattern() {}

// PatternNames lists the names bound by p, in the order they appear
func PatternNames(p Pattern) []*IdentifierPattern {
	var names []*IdentifierPattern
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p := p.(type) {
		case *IdentifierPattern:
			names = append(names, p)
		case *TuplePattern:
			for _, elem := range p.Elements {
				walk(elem)
			}
		case *ListPattern:
			for _, elem := range p.Elements {
				walk(elem)
			}
			if p.Rest != nil {
				walk(p.Rest)
			}
		case *ConstructorPattern:
			for _, arg := range p.Args {
				walk(arg)
			}
		}
	}
	walk(p)
	return names
}
