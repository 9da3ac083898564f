package infer

import (
	"go/token"
	"testing"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, path, src string) *syntax.Program {
	t.Helper()
	prog, err := syntax.Decode(token.NewFileSet(), path, []byte(src))
	require.NoError(t, err)
	return prog
}

func inferSource(t *testing.T, src string) *scope.FileScope {
	t.Helper()
	file := scope.NewFileScope("test.yaml", decode(t, "test.yaml", src), nil)
	File(file, scope.NewGlobalScope(), types.NewFresher())
	return file
}

func typeOf(t *testing.T, file *scope.FileScope, name string) string {
	t.Helper()
	b, ok := file.Lookup(name)
	require.True(t, ok, "binding %s not found", name)
	return b.Type.String()
}

func codes(file *scope.FileScope) []ilerr.ErrCode {
	var out []ilerr.ErrCode
	for _, err := range file.Errors.Errors() {
		out = append(out, err.Code())
	}
	return out
}

func TestListLiteral(t *testing.T) {
	file := inferSource(t, `
statements:
  - {kind: assignment, pattern: xs, value: {kind: list, elements: [1, 2, 3]}}
`)
	assert.Empty(t, codes(file))
	assert.Equal(t, "List<Number>", typeOf(t, file, "xs"))

	assign := file.Program.Statements[0].(*syntax.Assignment)
	listType, ok := file.TypeOf(assign.Value)
	require.True(t, ok)
	assert.Equal(t, "List<Number>", listType.String())
}

func TestHeterogeneousListIsOneMismatch(t *testing.T) {
	file := inferSource(t, `
statements:
  - {kind: list, elements: [1, {kind: string, value: a}]}
`)
	assert.Equal(t, []ilerr.ErrCode{ilerr.TypeMismatch}, codes(file))
}

func TestMultiBranchFunction(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: assignment
    pattern: f
    value:
      kind: abstraction
      branches:
        - params: [1]
          body: {kind: string, value: one}
        - params: [{kind: literalPattern, literal: {kind: string, value: two}}]
          body: 2
  - {kind: assignment, pattern: s, value: {kind: application, function: f, argument: 1}}
  - {kind: application, function: f, argument: true}
`)
	assert.Equal(t, "(Number -> String) | (String -> Number)", typeOf(t, file, "f"))
	assert.Equal(t, "String", typeOf(t, file, "s"))
	assert.Equal(t, []ilerr.ErrCode{ilerr.TypeMismatch}, codes(file))
}

func TestOverloadedPlus(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: assignment
    pattern: s
    value:
      kind: application
      function: {kind: application, function: "+", argument: {kind: string, value: a}}
      argument: {kind: string, value: b}
  - kind: assignment
    pattern: n
    value: {kind: application, function: {kind: application, function: "+", argument: 1}, argument: 2}
  - kind: assignment
    pattern: double
    value:
      kind: abstraction
      params: [x]
      body: {kind: application, function: {kind: application, function: "+", argument: x}, argument: x}
  - {kind: assignment, pattern: d, value: {kind: application, function: double, argument: {kind: string, value: c}}}
`)
	assert.Empty(t, codes(file))
	assert.Equal(t, "String", typeOf(t, file, "s"))
	assert.Equal(t, "Number", typeOf(t, file, "n"))
	assert.Equal(t, "(Number -> Number) | (String -> String)", typeOf(t, file, "double"))
	assert.Equal(t, "String", typeOf(t, file, "d"))
}

func TestBlockKeepsEveryTyping(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: assignment
    pattern: f
    value:
      kind: abstraction
      params: [x]
      body:
        kind: block
        statements:
          - kind: assignment
            pattern: y
            value: {kind: application, function: {kind: application, function: "+", argument: x}, argument: x}
          - y
  - {kind: assignment, pattern: r, value: {kind: application, function: f, argument: true}}
`)
	assert.Equal(t, "(Number -> Number) | (String -> String)", typeOf(t, file, "f"))
	assert.Equal(t, []ilerr.ErrCode{ilerr.TypeMismatch}, codes(file))
}

func TestOverloadedStatementInBody(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: assignment
    pattern: f
    value:
      kind: abstraction
      params: [x]
      body:
        kind: block
        statements:
          - {kind: application, function: {kind: application, function: "+", argument: x}, argument: x}
          - x
`)
	assert.Empty(t, codes(file))
	assert.Equal(t, "(Number -> Number) | (String -> String)", typeOf(t, file, "f"))
}

func TestAmbiguousExpression(t *testing.T) {
	file := inferSource(t, `
statements:
  - "+"
`)
	require.Equal(t, []ilerr.ErrCode{ilerr.IndeterminateType}, codes(file))
	indeterminate, ok := file.Errors.Errors()[0].(ilerr.NewIndeterminateType)
	require.True(t, ok)
	assert.Len(t, indeterminate.Candidates, 2)
}

func TestGeneralization(t *testing.T) {
	file := inferSource(t, `
statements:
  - {kind: assignment, pattern: id, value: {kind: abstraction, params: [x], body: x}}
  - {kind: assignment, pattern: a, value: {kind: application, function: id, argument: 1}}
  - {kind: assignment, pattern: b, value: {kind: application, function: id, argument: {kind: string, value: s}}}
`)
	assert.Empty(t, codes(file))
	id, ok := file.Lookup("id")
	require.True(t, ok)
	assert.Len(t, id.Quantified, 1)
	assert.Equal(t, "Number", typeOf(t, file, "a"))
	assert.Equal(t, "String", typeOf(t, file, "b"))
}

func TestBlockShadowing(t *testing.T) {
	file := inferSource(t, `
statements:
  - {kind: assignment, pattern: x, value: 1}
  - kind: assignment
    pattern: y
    value:
      kind: block
      statements:
        - {kind: assignment, pattern: x, value: {kind: string, value: s}}
        - x
`)
	assert.Empty(t, codes(file))
	assert.Equal(t, "Number", typeOf(t, file, "x"))
	assert.Equal(t, "String", typeOf(t, file, "y"))
}

func TestBindingErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []ilerr.ErrCode
	}{
		{
			name:     "duplicate",
			src:      "statements:\n  - {kind: assignment, pattern: x, value: 1}\n  - {kind: assignment, pattern: x, value: 2}\n",
			expected: []ilerr.ErrCode{ilerr.DuplicateBinding},
		},
		{
			name:     "missing",
			src:      "statements:\n  - nope\n",
			expected: []ilerr.ErrCode{ilerr.MissingBinding},
		},
		{
			name: "alternatives bind different names",
			src: `
statements:
  - kind: when
    subject: 1
    cases:
      - patterns: [a, 2]
        body: 0
`,
			expected: []ilerr.ErrCode{ilerr.AlternativeBindings},
		},
		{
			name:     "nested import",
			src:      "statements:\n  - {kind: block, statements: [{kind: import, path: lib.yaml}]}\n",
			expected: []ilerr.ErrCode{ilerr.ImportOutsideScope},
		},
		{
			name:     "unknown dependency",
			src:      "statements:\n  - {kind: import, path: lib.yaml}\n",
			expected: []ilerr.ErrCode{ilerr.UnknownDependency},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := inferSource(t, tt.src)
			assert.Equal(t, tt.expected, codes(file))
		})
	}
}

func TestClassAccess(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: class
    name: Box
    fields:
      - {name: value, type: a}
  - {kind: assignment, pattern: b, value: {kind: application, function: Box, argument: {kind: string, value: s}}}
  - {kind: assignment, pattern: v, value: {kind: access, target: b, member: value}}
  - {kind: access, target: b, member: other}
`)
	assert.Equal(t, "Box<String>", typeOf(t, file, "b"))
	assert.Equal(t, "String", typeOf(t, file, "v"))
	assert.Equal(t, []ilerr.ErrCode{ilerr.MissingBinding}, codes(file))
}

func TestEnumWhen(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: enum
    name: Shape
    variants:
      - {name: Circle, fields: [Number]}
      - {name: Empty}
  - kind: assignment
    pattern: area
    value:
      kind: abstraction
      params: [s]
      body:
        kind: when
        subject: s
        cases:
          - patterns: [{kind: constructorPattern, name: Circle, args: [r]}]
            body: r
          - patterns: [{kind: constructorPattern, name: Empty}]
            body: 0
`)
	assert.Empty(t, codes(file))
	assert.Equal(t, "(Shape -> Number)", typeOf(t, file, "area"))
}

func TestTypeOfPatternsAndSubjects(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: assignment
    pattern: r
    value:
      kind: when
      subject: {kind: list, elements: [1]}
      cases:
        - patterns: [x]
          body: 2
  - kind: assignment
    pattern: first
    value: {kind: abstraction, params: [{kind: tuplePattern, elements: [a, b]}], body: a}
`)
	require.Empty(t, codes(file))
	assert.Equal(t, "Number", typeOf(t, file, "r"))

	when := file.Program.Statements[0].(*syntax.Assignment).Value.(*syntax.When)
	tests := []struct {
		name     string
		node     syntax.Node
		expected string
	}{
		{name: "when", node: when, expected: "Number"},
		{name: "subject", node: when.Subject, expected: "List<Number>"},
		{name: "pattern", node: when.Cases[0].Patterns[0], expected: "List<Number>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, ok := file.TypeOf(tt.node)
			require.True(t, ok)
			assert.Equal(t, tt.expected, typ.String())
		})
	}

	fn := file.Program.Statements[1].(*syntax.Assignment).Value.(*syntax.Abstraction)
	param := fn.Branches[0].Params[0].(*syntax.TuplePattern)
	_, ok := file.TypeOf(param)
	assert.True(t, ok)
	_, ok = file.TypeOf(param.Elements[1])
	assert.True(t, ok)
	a, ok := file.TypeOf(param.Elements[0])
	require.True(t, ok)
	body, ok := file.TypeOf(fn.Branches[0].Body)
	require.True(t, ok)
	assert.Equal(t, body, a)
}

func TestComprehension(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: assignment
    pattern: ys
    value:
      kind: for
      generators:
        - {pattern: x, iterable: {kind: list, elements: [1, 2]}}
      body: {kind: application, function: {kind: application, function: "+", argument: x}, argument: 1}
`)
	assert.Empty(t, codes(file))
	assert.Equal(t, "List<Number>", typeOf(t, file, "ys"))
}

func TestModuleMembers(t *testing.T) {
	file := inferSource(t, `
statements:
  - kind: module
    name: M
    statements:
      - {kind: assignment, exported: true, pattern: a, value: 1}
      - {kind: assignment, pattern: hidden, value: 2}
  - {kind: assignment, pattern: b, value: {kind: access, target: M, member: a}}
  - {kind: access, target: M, member: hidden}
`)
	assert.Equal(t, "Number", typeOf(t, file, "b"))
	assert.Equal(t, []ilerr.ErrCode{ilerr.MissingBinding}, codes(file))
}

func TestImports(t *testing.T) {
	fresher := types.NewFresher()
	global := scope.NewGlobalScope()

	lib := scope.NewFileScope("lib.yaml", decode(t, "lib.yaml", `
statements:
  - {kind: assignment, exported: true, pattern: one, value: 1}
  - {kind: assignment, exported: true, pattern: id, value: {kind: abstraction, params: [x], body: x}}
  - {kind: assignment, pattern: private, value: 2}
`), nil)
	File(lib, global, fresher)
	require.Empty(t, codes(lib))
	global.Add(lib)

	main := scope.NewFileScope("main.yaml", decode(t, "main.yaml", `
statements:
  - {kind: import, path: lib.yaml, names: [one, id, private]}
  - {kind: import, path: lib.yaml, alias: L}
  - {kind: assignment, pattern: a, value: {kind: application, function: id, argument: one}}
  - {kind: assignment, pattern: b, value: {kind: access, target: L, member: one}}
`), []string{"lib.yaml", "lib.yaml"})
	File(main, global, fresher)

	assert.Equal(t, []ilerr.ErrCode{ilerr.MissingBinding}, codes(main))
	assert.Equal(t, "Number", typeOf(t, main, "a"))
	assert.Equal(t, "Number", typeOf(t, main, "b"))
	one, ok := main.Lookup("one")
	require.True(t, ok)
	assert.True(t, one.Imported)
}

func TestPrelude(t *testing.T) {
	fresher := types.NewFresher()
	first, second := Prelude(fresher), Prelude(fresher)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.NotSame(t, first[i], second[i])
		assert.Equal(t, first[i].Name, second[i].Name)
	}
}
