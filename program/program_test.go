package program

import (
	"testing"
	"testing/fstest"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/eaburns/pretty"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

func load(t *testing.T, files map[string]string) *Program {
	t.Helper()
	p, err := Load(mapFS(files), Settings{})
	require.NoError(t, err)
	return p
}

func TestLoadOrdersDependenciesFirst(t *testing.T) {
	p := load(t, map[string]string{
		"main.yaml": `
statements:
  - {kind: import, path: lib/strings.yaml, names: [greeting]}
  - {kind: assignment, pattern: g, value: greeting}
`,
		"lib/strings.yaml": `
statements:
  - {kind: import, path: ../base.yaml, names: [name]}
  - {kind: assignment, exported: true, pattern: greeting, value: {kind: application, function: {kind: application, function: "+", argument: {kind: string, value: "hi "}}, argument: name}}
`,
		"base.yaml": `
statements:
  - {kind: assignment, exported: true, pattern: name, value: {kind: string, value: sema}}
`,
	})
	require.False(t, p.Errors().HasError(), pretty.String(p.Errors().Errors()))

	var order []string
	for path := range p.Global.All() {
		order = append(order, path)
	}
	if diff := cmp.Diff([]string{"base.yaml", "lib/strings.yaml", "main.yaml"}, order); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}

	main, ok := p.File("main.yaml")
	require.True(t, ok)
	g, ok := main.Lookup("g")
	require.True(t, ok)
	assert.Equal(t, "String", g.Type.String())
}

func TestLoadCycle(t *testing.T) {
	p := load(t, map[string]string{
		"main.yaml": "statements:\n  - {kind: import, path: ok.yaml}\n  - {kind: import, path: a.yaml}\n",
		"ok.yaml":   "statements:\n  - nope\n",
		"a.yaml":    "statements:\n  - {kind: import, path: b.yaml}\n",
		"b.yaml":    "statements:\n  - {kind: import, path: a.yaml}\n",
	})
	errs := p.Errors().Errors()
	require.Len(t, errs, 2, pretty.String(errs))

	var cycle ilerr.NewCyclicDependency
	var codes []ilerr.ErrCode
	for _, err := range errs {
		codes = append(codes, err.Code())
		if c, ok := err.(ilerr.NewCyclicDependency); ok {
			cycle = c
		}
	}
	assert.ElementsMatch(t, []ilerr.ErrCode{ilerr.CyclicDependency, ilerr.MissingBinding}, codes)
	assert.Equal(t, "b.yaml", cycle.From)
	assert.Equal(t, "a.yaml", cycle.To)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cycle.Chain)
	assert.Equal(t, "b.yaml", cycle.File())

	// files away from the cycle are still inferred
	_, ok := p.File("ok.yaml")
	assert.True(t, ok)
	for _, skipped := range []string{"main.yaml", "a.yaml", "b.yaml"} {
		_, ok := p.File(skipped)
		assert.False(t, ok, skipped)
	}
}

func TestLoadMissingImport(t *testing.T) {
	p := load(t, map[string]string{
		"main.yaml": "statements:\n  - {kind: import, path: nowhere.yaml}\n",
	})
	errs := p.Errors().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ilerr.UnknownDependency, errs[0].Code())
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"missing entry", map[string]string{"other.yaml": "statements: []\n"}},
		{"entry does not decode", map[string]string{"main.yaml": "statements:\n  - {kind: goto}\n"}},
		{"import does not decode", map[string]string{
			"main.yaml": "statements:\n  - {kind: import, path: bad.yaml}\n",
			"bad.yaml":  "- 1\n",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(mapFS(tt.files), Settings{})
			assert.Error(t, err)
		})
	}
}

func TestLoadCustomEntry(t *testing.T) {
	p, err := Load(mapFS(map[string]string{
		"src/app.yaml": "statements:\n  - {kind: assignment, pattern: x, value: 1}\n",
	}), Settings{Entry: "./src/app.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "src/app.yaml", p.Entry)
	app, ok := p.File("src/app.yaml")
	require.True(t, ok)
	x, ok := app.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "Number", x.Type.String())
}
