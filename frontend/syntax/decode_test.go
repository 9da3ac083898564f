package syntax

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeString(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Decode(token.NewFileSet(), "test.yaml", []byte(src))
	require.NoError(t, err)
	return prog
}

func TestDecodeAssignment(t *testing.T) {
	prog := decodeString(t, `
statements:
  - kind: assignment
    exported: true
    pattern: x
    value:
      kind: list
      elements: [1, 2, {kind: string, value: "a"}]
`)
	require.Len(t, prog.Statements, 1)
	assign, ok := prog.Statements[0].(*Assignment)
	require.True(t, ok)
	assert.True(t, assign.Exported)
	assert.Equal(t, "x", assign.Pattern.(*IdentifierPattern).Name)

	list, ok := assign.Value.(*List)
	require.True(t, ok)
	require.Len(t, list.Elements, 3)
	assert.Equal(t, "1", list.Elements[0].(*Number).Syntax)
	assert.Equal(t, "a", list.Elements[2].(*String).Value)
	assert.Equal(t, `export x = [1, 2, "a"]`, Show(assign))
}

func TestDecodeScalarShorthands(t *testing.T) {
	prog := decodeString(t, `
statements:
  - 1.5
  - true
  - someName
`)
	require.Len(t, prog.Statements, 3)
	assert.IsType(t, &Number{}, prog.Statements[0])
	assert.Equal(t, true, prog.Statements[1].(*Boolean).Value)
	assert.Equal(t, "someName", prog.Statements[2].(*Identifier).Name)
}

func TestDecodeFunctionAndWhen(t *testing.T) {
	prog := decodeString(t, `
statements:
  - kind: abstraction
    branches:
      - params: [a, _]
        body: a
      - params: []
        body:
          kind: when
          subject: 1
          cases:
            - patterns: [1, {kind: tuplePattern, elements: [x, y]}]
              body: x
            - patterns: [{kind: listPattern, elements: [h], rest: t}]
              body: t
`)
	abs := prog.Statements[0].(*Abstraction)
	require.Len(t, abs.Branches, 2)
	assert.IsType(t, &WildcardPattern{}, abs.Branches[0].Params[1])
	assert.Empty(t, abs.Branches[1].Params)

	when := abs.Branches[1].Body.(*When)
	require.Len(t, when.Cases, 2)
	assert.IsType(t, &LiteralPattern{}, when.Cases[0].Patterns[0])
	names := PatternNames(when.Cases[1].Patterns[0])
	require.Len(t, names, 2)
	assert.Equal(t, "h", names[0].Name)
	assert.Equal(t, "t", names[1].Name)
}

func TestDecodeDeclarations(t *testing.T) {
	prog := decodeString(t, `
statements:
  - {kind: import, path: "./lib.yaml", names: [a, b]}
  - kind: class
    name: Point
    fields:
      - {name: x, type: Number}
      - {name: tags, type: {name: List, args: [String]}}
  - kind: enum
    name: Shape
    variants:
      - {name: Circle, fields: [Number]}
      - {name: Empty}
  - kind: annotated
    value: 1
    type: {kind: type, name: Number}
`)
	require.Len(t, prog.Statements, 4)
	imp := prog.Statements[0].(*Import)
	assert.Equal(t, []string{"a", "b"}, imp.Names)

	class := prog.Statements[1].(*Class)
	require.Len(t, class.Fields, 2)
	assert.Equal(t, "List<String>", Show(class.Fields[1].Type))

	enum := prog.Statements[2].(*Enum)
	assert.Equal(t, "enum Shape { Circle(Number), Empty }", Show(enum))

	assert.Equal(t, "1: Number", Show(prog.Statements[3]))
}

func TestDecodePositions(t *testing.T) {
	src := "statements:\n  - kind: identifier\n    name: abc\n    pos: [3, 6]\n  - xyz\n"
	fset := token.NewFileSet()
	prog, err := Decode(fset, "pos.yaml", []byte(src))
	require.NoError(t, err)

	explicit := prog.Statements[0]
	file := fset.File(explicit.Pos())
	require.NotNil(t, file)
	assert.Equal(t, 3, file.Offset(explicit.Pos()))
	assert.Equal(t, 6, file.Offset(explicit.End()))

	implicit := prog.Statements[1]
	position := fset.Position(implicit.Pos())
	assert.Equal(t, "pos.yaml", position.Filename)
	assert.Equal(t, 5, position.Line)
	assert.Equal(t, 5, position.Column)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown kind", "statements:\n  - kind: goto\n"},
		{"missing value", "statements:\n  - kind: assignment\n    pattern: x\n"},
		{"non-literal pattern", "statements:\n  - kind: assignment\n    pattern: {kind: literalPattern, literal: [1]}\n    value: 1\n"},
		{"not a mapping", "- 1\n"},
		{"bad pos", "statements:\n  - kind: identifier\n    name: a\n    pos: [10, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(token.NewFileSet(), "bad.yaml", []byte(tt.src))
			require.Error(t, err)
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}
