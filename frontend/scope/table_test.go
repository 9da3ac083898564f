package scope

import (
	"testing"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string) *syntax.IdentifierPattern {
	return &syntax.IdentifierPattern{Name: name}
}

func declare(t *testing.T, table *SymbolTable, name string, typ types.Type) *Binding {
	t.Helper()
	b := &Binding{Name: name, Type: typ, Node: ident(name)}
	require.Nil(t, table.Declare(b))
	return b
}

func TestShadowing(t *testing.T) {
	table := NewSymbolTable("main", nil, nil)
	declare(t, table, "x", types.Number)
	declare(t, table, "y", types.Number)

	table.EnterBlock(&syntax.Block{})
	inner := declare(t, table, "x", types.String)

	found, ok := table.Resolve("x")
	require.True(t, ok)
	assert.Same(t, inner, found)
	assert.Equal(t, types.String, found.Type)

	found, ok = table.ResolveWithin("x", 0)
	require.True(t, ok)
	assert.Same(t, inner, found)

	_, ok = table.ResolveWithin("y", 0)
	assert.False(t, ok, "depth 0 must not see the outer scope")
	_, ok = table.ResolveWithin("y", 1)
	assert.True(t, ok)

	table.LeaveBlock()
	found, ok = table.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, types.Number, found.Type)
}

func TestResolveFallbacks(t *testing.T) {
	plus := &Binding{Name: "+", Type: types.NewCurried(types.Number, types.Number, types.Number)}
	table := NewSymbolTable("main", nil, []*Binding{plus})

	found, ok := table.Resolve("+")
	require.True(t, ok)
	assert.Same(t, plus, found)

	found, ok = table.Resolve("Number")
	require.True(t, ok)
	assert.Equal(t, "Type<Number>", found.Type.String())

	_, ok = table.Resolve("nope")
	assert.False(t, ok)

	// declaring a prelude name shadows it
	declare(t, table, "+", types.String)
	found, _ = table.Resolve("+")
	assert.Equal(t, types.String, found.Type)
}

func TestDuplicates(t *testing.T) {
	table := NewSymbolTable("main", nil, nil)
	declare(t, table, "x", types.Number)

	err := table.Declare(&Binding{Name: "x", Type: types.String, Node: ident("x")})
	require.NotNil(t, err)
	assert.Equal(t, ilerr.DuplicateBinding, err.Code())
	assert.Equal(t, "main", err.File())

	t.Run("function body shares names with parameters", func(t *testing.T) {
		table.EnterAbstraction(&syntax.Abstraction{})
		table.SetNextImplicit()
		_, errs := table.Templates(ident("x"), types.NewFresher())
		assert.False(t, errs.HasError(), "parameters may shadow the file")

		table.EnterBlock(&syntax.Block{})
		assert.Equal(t, KindBody, table.Current().Kind)
		err := table.Declare(&Binding{Name: "x", Type: types.String, Node: ident("x")})
		require.NotNil(t, err)
		assert.Equal(t, ilerr.DuplicateBinding, err.Code())

		table.EnterBlock(&syntax.Block{})
		assert.Equal(t, KindBlock, table.Current().Kind)
		assert.Nil(t, table.Declare(&Binding{Name: "x", Type: types.String, Node: ident("x")}))
		table.LeaveBlock()

		table.LeaveBlock()
		table.LeaveAbstraction()
	})

	t.Run("same pattern binds a name twice", func(t *testing.T) {
		table.EnterBlock(&syntax.Block{})
		defer table.LeaveBlock()
		pattern := &syntax.TuplePattern{Elements: []syntax.Pattern{ident("a"), ident("a")}}
		created, errs := table.Templates(pattern, types.NewFresher())
		assert.Len(t, created, 1)
		require.Equal(t, 1, errs.Len())
		assert.Equal(t, ilerr.DuplicateBinding, errs.Errors()[0].Code())
	})
}

func TestTemplates(t *testing.T) {
	fresher := types.NewFresher()
	table := NewSymbolTable("main", nil, nil)

	table.SetNextExported()
	created, errs := table.Templates(&syntax.TuplePattern{Elements: []syntax.Pattern{ident("a"), &syntax.WildcardPattern{}, ident("b")}}, fresher)
	require.False(t, errs.HasError())
	require.Len(t, created, 2)
	assert.True(t, created[0].Exported)
	assert.True(t, created[1].Exported)

	pending, ok := table.Resolve("a")
	require.True(t, ok)
	assert.True(t, pending.Pending)
	assert.Equal(t, types.Type(created[0].Type), pending.Type)

	g, err := created[0].Promote(types.Number, types.NewTypeEqualityGraph())
	require.NoError(t, err)
	_, err = created[0].Promote(types.String, g)
	assert.Error(t, err, "promoting a template checks its working type")

	bound := table.Bind(created[0], types.Number, nil)
	assert.True(t, bound.Exported)
	assert.Len(t, table.Current().Templates(), 1)
	found, _ := table.Resolve("a")
	assert.False(t, found.Pending)

	// flags were reset
	next, _ := table.Templates(ident("c"), fresher)
	assert.False(t, next[0].Exported)
}

func TestExportOutsideScope(t *testing.T) {
	table := NewSymbolTable("main", nil, nil)
	table.EnterBlock(&syntax.Block{})
	table.SetNextExported()
	err := table.Declare(&Binding{Name: "x", Type: types.Number, Node: ident("x")})
	require.NotNil(t, err)
	assert.Equal(t, ilerr.ExportOutsideScope, err.Code())

	found, ok := table.Resolve("x")
	require.True(t, ok, "the binding is still usable")
	assert.False(t, found.Exported)

	importErr := table.CheckImport(&syntax.Import{Path: "lib"})
	require.NotNil(t, importErr)
	assert.Equal(t, ilerr.ImportOutsideScope, importErr.Code())
	table.LeaveBlock()
	assert.Nil(t, table.CheckImport(&syntax.Import{Path: "lib"}))

	module := &syntax.Module{Name: "m"}
	table.EnterModule(module)
	table.SetNextExported()
	assert.Nil(t, table.Declare(&Binding{Name: "y", Type: types.Number, Node: ident("y")}))
	table.LeaveModule()
}

func TestReduce(t *testing.T) {
	table := NewSymbolTable("main", nil, nil)
	abs := table.EnterAbstraction(&syntax.Abstraction{})
	table.SetNextImplicit()
	_, errs := table.Templates(ident("p"), types.NewFresher())
	require.False(t, errs.HasError())

	body := table.EnterBlock(&syntax.Block{})
	declare(t, table, "local", types.Number)
	nested := table.EnterBlock(&syntax.Block{})
	table.LeaveBlock()
	table.LeaveBlock()
	table.LeaveAbstraction()

	assert.Equal(t, abs.ID, body.MergedInto)
	b, ok := abs.Binding("local")
	require.True(t, ok)
	assert.Equal(t, abs.ID, b.Scope)
	assert.Equal(t, []ScopeID{nested.ID}, abs.Children)
	assert.Equal(t, abs.ID, nested.Parent)
}

func TestReduceWithManyScopesPanics(t *testing.T) {
	table := NewSymbolTable("main", nil, nil)
	table.EnterAbstraction(&syntax.Abstraction{})
	table.EnterBlock(&syntax.Block{})
	table.LeaveBlock()
	table.EnterBlock(&syntax.Block{})
	table.LeaveBlock()
	assert.Panics(t, func() { table.LeaveAbstraction() })
}

func TestLeaveWrongKindPanics(t *testing.T) {
	table := NewSymbolTable("main", nil, nil)
	assert.Panics(t, func() { table.LeaveBlock() })
	table.EnterBlock(&syntax.Block{})
	assert.Panics(t, func() { table.LeaveAbstraction() })
}

func TestTypeDeclarations(t *testing.T) {
	fresher := types.NewFresher()
	a := fresher.Fresh("a")
	decl := &TypeDeclaration{
		Name:    "Box",
		Type:    types.Parametric{Name: "Box", Params: []types.Type{a}},
		Params:  []types.Variable{a},
		Members: []Member{{Name: "value", Type: a}},
	}
	table := NewSymbolTable("main", nil, nil)
	require.Nil(t, table.DeclareType(decl))
	err := table.DeclareType(&TypeDeclaration{Name: "Box"})
	require.NotNil(t, err)
	assert.Equal(t, ilerr.DuplicateBinding, err.Code())

	table.EnterBlock(&syntax.Block{})
	found, ok := table.ResolveType("Box")
	require.True(t, ok)
	member, ok := found.Member("value", []types.Type{types.String})
	require.True(t, ok)
	assert.Equal(t, types.String, member.Type)
	_, ok = found.Member("missing", nil)
	assert.False(t, ok)
}

func TestFileScope(t *testing.T) {
	program := &syntax.Program{Path: "main", Statements: []syntax.Node{
		&syntax.Import{Path: "lib"},
		&syntax.Number{Syntax: "1"},
	}}
	table := NewSymbolTable("main", program, nil)
	table.SetNextExported()
	declare(t, table, "pub", types.Number)
	declare(t, table, "priv", types.Number)

	file := NewFileScope("main", program, []string{"lib"})
	file.Table = table
	exports := file.Exports()
	require.Len(t, exports, 1)
	assert.Equal(t, "pub", exports[0].Name)
	assert.Len(t, Imports(program), 1)

	global := NewGlobalScope()
	global.Add(file)
	found, ok := global.File("main")
	require.True(t, ok)
	assert.Same(t, file, found)
	assert.False(t, global.Errors().HasError())
}
