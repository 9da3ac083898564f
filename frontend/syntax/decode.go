package syntax

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decode reads a file's syntax tree from its YAML form, registering the file in fset
// so that positions in the tree can be printed as path:line:column.
//
// A file is a mapping with a `statements` sequence. Every node is a mapping with a
// `kind` key (see Kind.String) and the fields of its Go struct in lower camel case.
// A node may carry an explicit `pos: [start, end]` byte-offset range, otherwise its
// position is where the node starts in the YAML source.
//
// As a shorthand, a bare scalar in expression position is a Number, a Boolean or,
// for any other string, an Identifier. In pattern position, a bare string is an
// IdentifierPattern and `_` is a WildcardPattern.
func Decode(fset *token.FileSet, path string, data []byte) (*Program, error) {
	file := fset.AddFile(path, -1, len(data))
	file.SetLinesForContent(data)
	d := &decoder{file: file}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog := &Program{Path: path, Range: Range{PosStart: file.Pos(0), PosEnd: file.Pos(len(data))}}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return prog, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, d.errorf(root, "file must be a mapping with a 'statements' key")
	}
	raw := rawNode{}
	if err := root.Decode(&raw); err != nil {
		return nil, d.wrap(root, err)
	}
	stmts, err := d.nodes(raw.Statements)
	if err != nil {
		return nil, err
	}
	prog.Statements = stmts
	return prog, nil
}

// rawNode is the union of the fields of every kind of node
type rawNode struct {
	Kind       string      `yaml:"kind"`
	Pos        []int       `yaml:"pos"`
	Name       string      `yaml:"name"`
	Value      yaml.Node   `yaml:"value"`
	Elements   []yaml.Node `yaml:"elements"`
	Entries    []rawEntry  `yaml:"entries"`
	Function   yaml.Node   `yaml:"function"`
	Argument   yaml.Node   `yaml:"argument"`
	Branches   []rawBranch `yaml:"branches"`
	Params     []yaml.Node `yaml:"params"`
	Body       yaml.Node   `yaml:"body"`
	Pattern    yaml.Node   `yaml:"pattern"`
	Exported   bool        `yaml:"exported"`
	Statements []yaml.Node `yaml:"statements"`
	Subject    yaml.Node   `yaml:"subject"`
	Cases      []rawCase   `yaml:"cases"`
	Condition  yaml.Node   `yaml:"condition"`
	Then       yaml.Node   `yaml:"then"`
	Else       yaml.Node   `yaml:"else"`
	Generators []rawGen    `yaml:"generators"`
	Target     yaml.Node   `yaml:"target"`
	Member     string      `yaml:"member"`
	Type       yaml.Node   `yaml:"type"`
	Annotation yaml.Node   `yaml:"annotation"`
	Args       []yaml.Node `yaml:"args"`
	Path       string      `yaml:"path"`
	Names      []string    `yaml:"names"`
	Alias      string      `yaml:"alias"`
	Fields     []yaml.Node `yaml:"fields"`
	Variants   []rawVar    `yaml:"variants"`
	Rest       yaml.Node   `yaml:"rest"`
	Literal    yaml.Node   `yaml:"literal"`
}

type rawEntry struct {
	Key   yaml.Node `yaml:"key"`
	Value yaml.Node `yaml:"value"`
}

type rawBranch struct {
	Params []yaml.Node `yaml:"params"`
	Body   yaml.Node   `yaml:"body"`
}

type rawCase struct {
	Patterns []yaml.Node `yaml:"patterns"`
	Body     yaml.Node   `yaml:"body"`
}

type rawGen struct {
	Pattern  yaml.Node `yaml:"pattern"`
	Iterable yaml.Node `yaml:"iterable"`
}

type rawField struct {
	Name string    `yaml:"name"`
	Type yaml.Node `yaml:"type"`
}

type rawVar struct {
	Name   string      `yaml:"name"`
	Fields []yaml.Node `yaml:"fields"`
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

type decoder struct {
	file *token.File
}

// DecodeError is returned for YAML which is well-formed but not a valid syntax tree
type DecodeError struct {
	Path         string
	Line, Column int
	Message      string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

func (d *decoder) errorf(at *yaml.Node, format string, args ...any) error {
	return &DecodeError{
		Path:    d.file.Name(),
		Line:    at.Line,
		Column:  at.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (d *decoder) wrap(at *yaml.Node, err error) error {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return err
	}
	return d.errorf(at, "%v", err)
}

func present(n *yaml.Node) bool {
	return n.Kind != 0 && !(n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func (d *decoder) offsetOf(n *yaml.Node) int {
	if n.Line <= 0 {
		return 0
	}
	lineStart := d.file.LineStart(min(n.Line, d.file.LineCount()))
	offset := d.file.Offset(lineStart) + n.Column - 1
	return max(0, min(offset, d.file.Size()))
}

func (d *decoder) rangeOf(n *yaml.Node, raw *rawNode) (Range, error) {
	if raw != nil && raw.Pos != nil {
		if len(raw.Pos) != 2 || raw.Pos[0] < 0 || raw.Pos[1] < raw.Pos[0] || raw.Pos[1] > d.file.Size() {
			return Range{}, d.errorf(n, "invalid pos %v", raw.Pos)
		}
		return Range{PosStart: d.file.Pos(raw.Pos[0]), PosEnd: d.file.Pos(raw.Pos[1])}, nil
	}
	start := d.offsetOf(n)
	end := start
	if n.Kind == yaml.ScalarNode {
		end = min(start+len(n.Value), d.file.Size())
	}
	return Range{PosStart: d.file.Pos(start), PosEnd: d.file.Pos(end)}, nil
}

func (d *decoder) nodes(ns []yaml.Node) ([]Node, error) {
	out := make([]Node, 0, len(ns))
	for i := range ns {
		node, err := d.node(&ns[i])
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (d *decoder) patterns(ns []yaml.Node) ([]Pattern, error) {
	out := make([]Pattern, 0, len(ns))
	for i := range ns {
		p, err := d.pattern(&ns[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *decoder) typeExprs(ns []yaml.Node) ([]*TypeExpr, error) {
	out := make([]*TypeExpr, 0, len(ns))
	for i := range ns {
		t, err := d.typeExpr(&ns[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// optional decodes n when it is present, and returns nil otherwise
func (d *decoder) optional(n *yaml.Node) (Node, error) {
	if !present(n) {
		return nil, nil
	}
	return d.node(n)
}

func (d *decoder) required(parent *yaml.Node, n *yaml.Node, field string) (Node, error) {
	if !present(n) {
		return nil, d.errorf(parent, "missing required field '%s'", field)
	}
	return d.node(n)
}

func (d *decoder) scalar(n *yaml.Node) (Node, error) {
	rng, err := d.rangeOf(n, nil)
	if err != nil {
		return nil, err
	}
	switch n.Tag {
	case "!!int", "!!float":
		return &Number{Range: rng, Syntax: n.Value}, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, d.errorf(n, "invalid boolean %q", n.Value)
		}
		return &Boolean{Range: rng, Value: b}, nil
	case "!!str":
		return &Identifier{Range: rng, Name: n.Value}, nil
	default:
		return nil, d.errorf(n, "unexpected scalar %q", n.Value)
	}
}

func (d *decoder) decodeRaw(n *yaml.Node) (*rawNode, Kind, Range, error) {
	if n.Kind != yaml.MappingNode {
		return nil, 0, Range{}, d.errorf(n, "expected a node mapping")
	}
	raw := &rawNode{}
	if err := n.Decode(raw); err != nil {
		return nil, 0, Range{}, d.wrap(n, err)
	}
	kind, ok := kindsByName[raw.Kind]
	if !ok {
		return nil, 0, Range{}, d.errorf(n, "unknown node kind '%s'", raw.Kind)
	}
	rng, err := d.rangeOf(n, raw)
	return raw, kind, rng, err
}

func (d *decoder) node(n *yaml.Node) (Node, error) {
	if n.Kind == yaml.ScalarNode {
		return d.scalar(n)
	}
	raw, kind, rng, err := d.decodeRaw(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindNumber:
		return &Number{Range: rng, Syntax: raw.Value.Value}, nil
	case KindString:
		return &String{Range: rng, Value: raw.Value.Value}, nil
	case KindBoolean:
		b, err := strconv.ParseBool(raw.Value.Value)
		if err != nil {
			return nil, d.errorf(n, "invalid boolean %q", raw.Value.Value)
		}
		return &Boolean{Range: rng, Value: b}, nil
	case KindIdentifier:
		return &Identifier{Range: rng, Name: raw.Name}, nil
	case KindList:
		elems, err := d.nodes(raw.Elements)
		return &List{Range: rng, Elements: elems}, err
	case KindTuple:
		elems, err := d.nodes(raw.Elements)
		return &Tuple{Range: rng, Elements: elems}, err
	case KindMap:
		m := &Map{Range: rng}
		for i := range raw.Entries {
			key, err := d.required(n, &raw.Entries[i].Key, "key")
			if err != nil {
				return nil, err
			}
			value, err := d.required(n, &raw.Entries[i].Value, "value")
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, MapEntry{Key: key, Value: value})
		}
		return m, nil
	case KindApplication:
		fn, err := d.required(n, &raw.Function, "function")
		if err != nil {
			return nil, err
		}
		arg, err := d.optional(&raw.Argument)
		return &Application{Range: rng, Function: fn, Argument: arg}, err
	case KindAbstraction:
		return d.abstraction(n, raw, rng)
	case KindAssignment:
		pattern, err := d.pattern(&raw.Pattern)
		if err != nil {
			return nil, err
		}
		value, err := d.required(n, &raw.Value, "value")
		return &Assignment{Range: rng, Pattern: pattern, Value: value, Exported: raw.Exported}, err
	case KindBlock:
		stmts, err := d.nodes(raw.Statements)
		return &Block{Range: rng, Statements: stmts}, err
	case KindWhen:
		subject, err := d.required(n, &raw.Subject, "subject")
		if err != nil {
			return nil, err
		}
		when := &When{Range: rng, Subject: subject}
		for i := range raw.Cases {
			patterns, err := d.patterns(raw.Cases[i].Patterns)
			if err != nil {
				return nil, err
			}
			if len(patterns) == 0 {
				return nil, d.errorf(n, "when case must have at least one pattern")
			}
			body, err := d.required(n, &raw.Cases[i].Body, "body")
			if err != nil {
				return nil, err
			}
			when.Cases = append(when.Cases, WhenCase{Patterns: patterns, Body: body})
		}
		return when, nil
	case KindIf:
		cond, err := d.required(n, &raw.Condition, "condition")
		if err != nil {
			return nil, err
		}
		then, err := d.required(n, &raw.Then, "then")
		if err != nil {
			return nil, err
		}
		els, err := d.optional(&raw.Else)
		return &If{Range: rng, Condition: cond, Then: then, Else: els}, err
	case KindFor:
		loop := &For{Range: rng}
		for i := range raw.Generators {
			p, err := d.pattern(&raw.Generators[i].Pattern)
			if err != nil {
				return nil, err
			}
			iter, err := d.required(n, &raw.Generators[i].Iterable, "iterable")
			if err != nil {
				return nil, err
			}
			loop.Generators = append(loop.Generators, Generator{Pattern: p, Iterable: iter})
		}
		body, err := d.required(n, &raw.Body, "body")
		loop.Body = body
		return loop, err
	case KindAccess:
		target, err := d.required(n, &raw.Target, "target")
		return &Access{Range: rng, Target: target, Member: raw.Member}, err
	case KindAnnotated:
		value, err := d.required(n, &raw.Value, "value")
		if err != nil {
			return nil, err
		}
		t, err := d.typeExpr(&raw.Type)
		return &Annotated{Range: rng, Value: value, Type: t}, err
	case KindImport:
		if raw.Path == "" {
			return nil, d.errorf(n, "import must have a path")
		}
		return &Import{Range: rng, Path: raw.Path, Names: raw.Names, Alias: raw.Alias}, nil
	case KindModule:
		stmts, err := d.nodes(raw.Statements)
		return &Module{Range: rng, Name: raw.Name, Statements: stmts, Exported: raw.Exported}, err
	case KindClass:
		class := &Class{Range: rng, Name: raw.Name, Exported: raw.Exported}
		for i := range raw.Fields {
			field := rawField{}
			if err := raw.Fields[i].Decode(&field); err != nil {
				return nil, d.wrap(&raw.Fields[i], err)
			}
			t, err := d.typeExpr(&field.Type)
			if err != nil {
				return nil, err
			}
			class.Fields = append(class.Fields, Field{Name: field.Name, Type: t})
		}
		return class, nil
	case KindEnum:
		enum := &Enum{Range: rng, Name: raw.Name, Exported: raw.Exported}
		for _, v := range raw.Variants {
			fields, err := d.typeExprs(v.Fields)
			if err != nil {
				return nil, err
			}
			enum.Variants = append(enum.Variants, Variant{Name: v.Name, Fields: fields})
		}
		return enum, nil
	case KindTypeExpr:
		return d.typeExpr(n)
	default:
		return d.pattern(n)
	}
}

func (d *decoder) abstraction(n *yaml.Node, raw *rawNode, rng Range) (Node, error) {
	branches := raw.Branches
	// a single-branch function may list params and body directly
	if len(branches) == 0 {
		branches = []rawBranch{{Params: raw.Params, Body: raw.Body}}
	}
	abs := &Abstraction{Range: rng}
	for i := range branches {
		params, err := d.patterns(branches[i].Params)
		if err != nil {
			return nil, err
		}
		body, err := d.required(n, &branches[i].Body, "body")
		if err != nil {
			return nil, err
		}
		abs.Branches = append(abs.Branches, Branch{Params: params, Body: body})
	}
	return abs, nil
}

func (d *decoder) pattern(n *yaml.Node) (Pattern, error) {
	if !present(n) {
		return nil, d.errorf(n, "missing pattern")
	}
	if n.Kind == yaml.ScalarNode {
		rng, err := d.rangeOf(n, nil)
		if err != nil {
			return nil, err
		}
		switch {
		case n.Tag != "!!str":
			lit, err := d.scalar(n)
			if err != nil {
				return nil, err
			}
			return &LiteralPattern{Range: rng, Literal: lit.(Literal)}, nil
		case n.Value == "_":
			return &WildcardPattern{Range: rng}, nil
		default:
			return &IdentifierPattern{Range: rng, Name: n.Value}, nil
		}
	}
	raw, kind, rng, err := d.decodeRaw(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindIdentifierPattern:
		p := &IdentifierPattern{Range: rng, Name: raw.Name}
		if present(&raw.Annotation) {
			if p.Annotation, err = d.typeExpr(&raw.Annotation); err != nil {
				return nil, err
			}
		}
		return p, nil
	case KindWildcardPattern:
		return &WildcardPattern{Range: rng}, nil
	case KindLiteralPattern:
		node, err := d.required(n, &raw.Literal, "literal")
		if err != nil {
			return nil, err
		}
		lit, ok := node.(Literal)
		if !ok {
			return nil, d.errorf(n, "%s is not a literal", node.Describe())
		}
		return &LiteralPattern{Range: rng, Literal: lit}, nil
	case KindTuplePattern:
		elems, err := d.patterns(raw.Elements)
		return &TuplePattern{Range: rng, Elements: elems}, err
	case KindListPattern:
		elems, err := d.patterns(raw.Elements)
		if err != nil {
			return nil, err
		}
		p := &ListPattern{Range: rng, Elements: elems}
		if present(&raw.Rest) {
			rest, err := d.pattern(&raw.Rest)
			if err != nil {
				return nil, err
			}
			ident, ok := rest.(*IdentifierPattern)
			if !ok {
				return nil, d.errorf(&raw.Rest, "rest of a list pattern must be a variable")
			}
			p.Rest = ident
		}
		return p, nil
	case KindConstructorPattern:
		args, err := d.patterns(raw.Args)
		return &ConstructorPattern{Range: rng, Name: raw.Name, Args: args}, err
	default:
		return nil, d.errorf(n, "%s is not a pattern", kind)
	}
}

func (d *decoder) typeExpr(n *yaml.Node) (*TypeExpr, error) {
	if !present(n) {
		return nil, d.errorf(n, "missing type")
	}
	// a bare string is a type name with no arguments
	if n.Kind == yaml.ScalarNode {
		rng, err := d.rangeOf(n, nil)
		return &TypeExpr{Range: rng, Name: n.Value}, err
	}
	raw := &rawNode{}
	if err := n.Decode(raw); err != nil {
		return nil, d.wrap(n, err)
	}
	if raw.Kind != "" && raw.Kind != KindTypeExpr.String() {
		return nil, d.errorf(n, "expected a type, found %s", raw.Kind)
	}
	rng, err := d.rangeOf(n, raw)
	if err != nil {
		return nil, err
	}
	args, err := d.typeExprs(raw.Args)
	return &TypeExpr{Range: rng, Name: raw.Name, Args: args}, err
}
