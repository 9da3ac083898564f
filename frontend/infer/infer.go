// Package infer assigns a type to every node of a file by exploring, for every node,
// the set of typings which are consistent with its children.
package infer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cottand/sema/frontend/disjunction"
	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
	"github.com/cottand/sema/internal/log"
)

var logger = syntax.NodeLogger(log.DefaultLogger.With("section", log.SectionInference))

// errAlreadyReported is returned once an error has been added to the errors of the
// file, so that it is not reported again by every enclosing node
var errAlreadyReported = errors.New("error already reported")

type inferrer struct {
	file    *scope.FileScope
	global  *scope.GlobalScope
	table   *scope.SymbolTable
	fresher *types.Fresher
	errs    *ilerr.Errors
	logger  *slog.Logger
}

// File infers the types of every statement of file. The files it depends on must
// already be in global.
//
// Errors are collected in file.Errors rather than returned: an error in one
// top-level statement does not prevent inferring the next ones.
func File(file *scope.FileScope, global *scope.GlobalScope, fresher *types.Fresher) {
	in := &inferrer{
		file:    file,
		global:  global,
		table:   scope.NewSymbolTable(file.Path, file.Program, Prelude(fresher)),
		fresher: fresher,
		errs:    &ilerr.Errors{},
		logger:  logger.With("file", file.Path),
	}
	file.Table = in.table
	if file.Types == nil {
		file.Types = make(map[syntax.Node]types.Type)
	}

	in.logger.Debug("inferring file", "statements", len(file.Program.Statements))
	in.units(file.Program.Statements)
	file.Errors = file.Errors.Merge(in.errs)
	in.logger.Debug("inferred file", "errors", file.Errors)
}

func (in *inferrer) at(node syntax.Positioner) ilerr.Loc {
	return ilerr.At(in.file.Path, node)
}

func (in *inferrer) report(err ilerr.IleError) {
	in.logger.Debug("reporting error", "error", err.Error())
	in.errs = in.errs.With(err)
}

// fail reports err at node, unless it was already reported, and returns errAlreadyReported
func (in *inferrer) fail(node syntax.Node, err error) error {
	if errors.Is(err, errAlreadyReported) {
		return err
	}
	var ileErr ilerr.IleError
	var mismatch *types.TypeMismatch
	switch {
	case errors.As(err, &ileErr):
		in.report(ileErr)
	case errors.As(err, &mismatch):
		in.report(ilerr.New(ilerr.NewTypeMismatch{Loc: in.at(node), Mismatch: mismatch}))
	default:
		in.report(ilerr.New(ilerr.Unclassified{Loc: in.at(node), From: err}))
	}
	return errAlreadyReported
}

// infer returns every typing of node consistent with g. Children are inferred
// left to right, each under g, and their answers are combined afterwards.
func (in *inferrer) infer(node syntax.Node, g *types.TypeEqualityGraph) (Answers, error) {
	switch node := node.(type) {
	case *syntax.Number:
		return disjunction.Single(typed(node, types.Number), types.Type(types.Number), g), nil
	case *syntax.String:
		return disjunction.Single(typed(node, types.String), types.Type(types.String), g), nil
	case *syntax.Boolean:
		return disjunction.Single(typed(node, types.Boolean), types.Type(types.Boolean), g), nil
	case *syntax.Identifier:
		return in.identifier(node, g)
	case *syntax.List:
		return in.list(node, g)
	case *syntax.Tuple:
		return in.tuple(node, g)
	case *syntax.Map:
		return in.mapLiteral(node, g)
	case *syntax.Application:
		return in.application(node, g)
	case *syntax.Abstraction:
		return in.abstraction(node, g)
	case *syntax.Block:
		return in.block(node, g)
	case *syntax.When:
		return in.when(node, g)
	case *syntax.If:
		return in.ifExpr(node, g)
	case *syntax.For:
		return in.forExpr(node, g)
	case *syntax.Access:
		return in.access(node, g)
	case *syntax.Annotated:
		return in.annotated(node, g)
	case *syntax.Assignment, *syntax.Import, *syntax.Module, *syntax.Class, *syntax.Enum:
		// declarations in expression position evaluate to Void
		// their names are bound when the enclosing scope is left
		res, err := in.statement(node, g)
		return res.answers, err
	default:
		panic(fmt.Sprintf("cannot infer node of kind %v: %T", node.Kind(), node))
	}
}
