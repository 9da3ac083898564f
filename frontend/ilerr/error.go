package ilerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

// enableDebugErrorPrinting makes errors include where they were created when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	DuplicateBinding
	MissingBinding
	ExportOutsideScope
	ImportOutsideScope
	CyclicDependency
	TypeMismatch
	IndeterminateType
	AlternativeBindings
	UnknownDependency
)

var codeNames = map[ErrCode]string{
	None:                "unclassified",
	DuplicateBinding:    "duplicate binding",
	MissingBinding:      "missing binding",
	ExportOutsideScope:  "export outside scope",
	ImportOutsideScope:  "import outside scope",
	CyclicDependency:    "cyclic dependency",
	TypeMismatch:        "type mismatch",
	IndeterminateType:   "indeterminate type",
	AlternativeBindings: "alternative bindings",
	UnknownDependency:   "unknown dependency",
}

func (c ErrCode) String() string {
	return codeNames[c]
}

type IleError interface {
	Error() string
	Code() ErrCode
	syntax.Positioner
	// File is the path of the file the error was found in
	File() string

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if lines := strings.Split(stack, "\n"); !enableDebugFullStacktrace && len(lines) > 6 {
			stack = lines[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

// Loc is where an error was found
type Loc struct {
	syntax.Positioner
	Path string
}

func (l Loc) File() string { return l.Path }

// At locates an error at node, in the file at path. node may be nil.
func At(path string, node syntax.Positioner) Loc {
	if node == nil {
		node = syntax.Range{}
	}
	return Loc{Positioner: node, Path: path}
}

type Unclassified struct {
	Loc
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewDuplicateBinding struct {
	Loc
	Name string
	// Previous is where Name was first declared
	Previous syntax.Positioner
	stack    []byte
}

func (e NewDuplicateBinding) Code() ErrCode { return DuplicateBinding }
func (e NewDuplicateBinding) Error() string {
	return fmt.Sprintf("'%s' is already declared in this scope", e.Name)
}
func (e NewDuplicateBinding) getStack() []byte { return e.stack }
func (e NewDuplicateBinding) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewMissingBinding struct {
	Loc
	Name string
	// Of, when not empty, is the type Name was looked up in
	Of    string
	stack []byte
}

func (e NewMissingBinding) Code() ErrCode { return MissingBinding }
func (e NewMissingBinding) Error() string {
	if e.Of != "" {
		return fmt.Sprintf("'%s' has no member '%s'", e.Of, e.Name)
	}
	return fmt.Sprintf("variable '%s' is not defined", e.Name)
}
func (e NewMissingBinding) getStack() []byte { return e.stack }
func (e NewMissingBinding) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewExportOutsideScope struct {
	Loc
	Name  string
	stack []byte
}

func (e NewExportOutsideScope) Code() ErrCode { return ExportOutsideScope }
func (e NewExportOutsideScope) Error() string {
	return fmt.Sprintf("'%s' cannot be exported: only file and module declarations can be exported", e.Name)
}
func (e NewExportOutsideScope) getStack() []byte { return e.stack }
func (e NewExportOutsideScope) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewImportOutsideScope struct {
	Loc
	ImportPath string
	stack      []byte
}

func (e NewImportOutsideScope) Code() ErrCode { return ImportOutsideScope }
func (e NewImportOutsideScope) Error() string {
	return fmt.Sprintf("import of '%s' must be at the top level of a file", e.ImportPath)
}
func (e NewImportOutsideScope) getStack() []byte { return e.stack }
func (e NewImportOutsideScope) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewCyclicDependency struct {
	Loc
	// From depends on To, which is already being visited
	From, To string
	// Chain is the path of dependencies from To down to From
	Chain []string
	stack []byte
}

func (e NewCyclicDependency) Code() ErrCode { return CyclicDependency }
func (e NewCyclicDependency) Error() string {
	return fmt.Sprintf("import cycle: '%s' depends on '%s' through %s", e.From, e.To, strings.Join(append(e.Chain, e.To), " -> "))
}
func (e NewCyclicDependency) getStack() []byte { return e.stack }
func (e NewCyclicDependency) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewTypeMismatch struct {
	Loc
	Mismatch *types.TypeMismatch
	stack    []byte
}

func (e NewTypeMismatch) Code() ErrCode { return TypeMismatch }
func (e NewTypeMismatch) Error() string {
	return e.Mismatch.Error()
}
func (e NewTypeMismatch) Unwrap() error    { return e.Mismatch }
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewIndeterminateType struct {
	Loc
	// Candidates are the types which survived inference
	Candidates []types.Type
	stack      []byte
}

func (e NewIndeterminateType) Code() ErrCode { return IndeterminateType }
func (e NewIndeterminateType) Error() string {
	if len(e.Candidates) == 0 {
		return "cannot determine the type of this expression"
	}
	candidates := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		candidates[i] = "'" + c.String() + "'"
	}
	return fmt.Sprintf("cannot determine the type of this expression: it could be any of %s", strings.Join(candidates, ", "))
}
func (e NewIndeterminateType) getStack() []byte { return e.stack }
func (e NewIndeterminateType) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewAlternativeBindings struct {
	Loc
	// Name is bound by some alternatives of a when-case but not by this one
	Name  string
	stack []byte
}

func (e NewAlternativeBindings) Code() ErrCode { return AlternativeBindings }
func (e NewAlternativeBindings) Error() string {
	return fmt.Sprintf("every alternative pattern of a case must bind the same names, but this one does not bind '%s'", e.Name)
}
func (e NewAlternativeBindings) getStack() []byte { return e.stack }
func (e NewAlternativeBindings) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnknownDependency struct {
	Loc
	ImportPath string
	stack      []byte
}

func (e NewUnknownDependency) Code() ErrCode { return UnknownDependency }
func (e NewUnknownDependency) Error() string {
	return fmt.Sprintf("cannot find imported file '%s'", e.ImportPath)
}
func (e NewUnknownDependency) getStack() []byte { return e.stack }
func (e NewUnknownDependency) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
