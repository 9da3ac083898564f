package infer

import (
	"slices"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

func (in *inferrer) declare(b *scope.Binding) {
	if err := in.table.Declare(b); err != nil {
		in.report(err)
	}
}

func (in *inferrer) declareType(decl *scope.TypeDeclaration) {
	if err := in.table.DeclareType(decl); err != nil {
		in.report(err)
	}
}

// declaredType builds the declaration of a type whose parameters are the type
// variables named in exprs
func (in *inferrer) declaredType(name string, node syntax.Node, exported bool, exprs ...*syntax.TypeExpr) (*scope.TypeDeclaration, map[string]types.Variable) {
	vars := make(map[string]types.Variable)
	decl := &scope.TypeDeclaration{Name: name, Type: types.Parametric{Name: name}, Node: node, Exported: exported}
	for _, param := range typeVariables(exprs...) {
		v := in.fresher.Fresh(param)
		vars[param] = v
		decl.Params = append(decl.Params, v)
		decl.Type.Params = append(decl.Type.Params, v)
	}
	return decl, vars
}

func quantifiedParams(decl *scope.TypeDeclaration) []types.VarID {
	ids := make([]types.VarID, len(decl.Params))
	for i, v := range decl.Params {
		ids[i] = v.ID
	}
	return ids
}

// fieldTypes converts the types of the fields of a declaration. A field whose type
// is invalid gets a variable instead, after reporting the error.
func (in *inferrer) fieldTypes(exprs []*syntax.TypeExpr, vars map[string]types.Variable) []types.Type {
	ts := make([]types.Type, len(exprs))
	for i, expr := range exprs {
		t, err := in.typeExpr(expr, vars)
		if err != nil {
			_ = in.fail(expr, err)
			t = in.fresher.Fresh("_")
		}
		ts[i] = t
	}
	return ts
}

// constructor is the type of a function building a value of type result from fields
func constructor(fields []types.Type, result types.Type) types.Type {
	if len(fields) == 0 {
		return types.NewCurried(types.Void, result)
	}
	return types.NewCurried(append(slices.Clone(fields), result)...)
}

// class declares the type of the class and a constructor taking every field in order.
// The type is declared before its fields are resolved, so fields may refer to it.
func (in *inferrer) class(node *syntax.Class) {
	exprs := make([]*syntax.TypeExpr, len(node.Fields))
	for i, field := range node.Fields {
		exprs[i] = field.Type
	}
	decl, vars := in.declaredType(node.Name, node, node.Exported, exprs...)
	in.declareType(decl)

	fields := in.fieldTypes(exprs, vars)
	for i, field := range node.Fields {
		decl.Members = append(decl.Members, scope.Member{Name: field.Name, Type: fields[i]})
	}
	in.declare(&scope.Binding{
		Name:       node.Name,
		Type:       constructor(fields, decl.Type),
		Quantified: quantifiedParams(decl),
		Exported:   node.Exported,
		Node:       node,
	})
}

// enum declares the type of the enum and one binding per variant: a constructor for
// variants with fields, and a value otherwise
func (in *inferrer) enum(node *syntax.Enum) {
	var exprs []*syntax.TypeExpr
	for _, variant := range node.Variants {
		exprs = append(exprs, variant.Fields...)
	}
	decl, vars := in.declaredType(node.Name, node, node.Exported, exprs...)
	in.declareType(decl)

	for _, variant := range node.Variants {
		var t types.Type = decl.Type
		if len(variant.Fields) > 0 {
			t = constructor(in.fieldTypes(variant.Fields, vars), decl.Type)
		}
		in.declare(&scope.Binding{
			Name:       variant.Name,
			Type:       t,
			Quantified: quantifiedParams(decl),
			Exported:   node.Exported,
			Node:       node,
		})
	}
}

// moduleType is the declaration of a module value whose members are bindings
func moduleType(name string, node syntax.Node, exported bool, bindings []*scope.Binding) *scope.TypeDeclaration {
	decl := &scope.TypeDeclaration{Name: name, Type: types.Parametric{Name: name}, Node: node, Exported: exported}
	for _, b := range bindings {
		decl.Members = append(decl.Members, scope.Member{Name: b.Name, Type: b.Type, Quantified: b.Quantified})
	}
	return decl
}

// module infers the statements of a module as units, then binds the module as a
// value whose members are its exports
func (in *inferrer) module(node *syntax.Module) {
	in.table.EnterModule(node)
	in.units(node.Statements)
	s := in.table.LeaveModule()

	exports := slices.DeleteFunc(slices.Clone(s.Bindings()), func(b *scope.Binding) bool { return !b.Exported })
	decl := moduleType(node.Name, node, node.Exported, exports)
	in.declareType(decl)
	in.declare(&scope.Binding{Name: node.Name, Type: decl.Type, Exported: node.Exported, Node: node})
}

// dependency finds the already inferred file node imports
func (in *inferrer) dependency(node *syntax.Import) (*scope.FileScope, bool) {
	i := slices.Index(scope.Imports(in.file.Program), node)
	if i < 0 || i >= len(in.file.Dependencies) || in.global == nil {
		return nil, false
	}
	return in.global.File(in.file.Dependencies[i])
}

func importedCopy(b *scope.Binding, node syntax.Node) *scope.Binding {
	return &scope.Binding{Name: b.Name, Type: b.Type, Quantified: b.Quantified, Imported: true, Node: node}
}

func (in *inferrer) importFile(node *syntax.Import) {
	if err := in.table.CheckImport(node); err != nil {
		in.report(err)
		return
	}
	dep, ok := in.dependency(node)
	if !ok {
		in.report(ilerr.New(ilerr.NewUnknownDependency{Loc: in.at(node), ImportPath: node.Path}))
		return
	}
	for _, exported := range dep.ExportedTypes() {
		decl := *exported
		decl.Exported, decl.Imported = false, true
		in.declareType(&decl)
	}

	exports := dep.Exports()
	if node.Alias != "" {
		decl := moduleType(node.Alias, node, false, exports)
		decl.Imported = true
		in.declareType(decl)
		in.declare(&scope.Binding{Name: node.Alias, Type: decl.Type, Imported: true, Node: node})
		return
	}
	if len(node.Names) == 0 {
		for _, b := range exports {
			in.declare(importedCopy(b, node))
		}
		return
	}
	for _, name := range node.Names {
		i := slices.IndexFunc(exports, func(b *scope.Binding) bool { return b.Name == name })
		if i < 0 {
			in.report(ilerr.New(ilerr.NewMissingBinding{Loc: in.at(node), Name: name, Of: node.Path}))
			continue
		}
		in.declare(importedCopy(exports[i], node))
	}
	in.logger.Debug("imported file", "path", dep.Path, "names", len(node.Names))
}
