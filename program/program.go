// Package program loads the files of a program, starting from its entry file, and
// infers them in dependency order.
package program

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"path"
	"slices"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/infer"
	"github.com/cottand/sema/frontend/modgraph"
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
	"github.com/cottand/sema/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var programLogger = log.DefaultLogger.With("section", log.SectionProgram)

const DefaultEntry = "main.yaml"

type Settings struct {
	// Entry is the path of the first file to load, inside the filesystem of the program.
	// The default is DefaultEntry
	Entry string
}

// Program is every file reachable from an entry file, typed
type Program struct {
	Entry   string
	Global  *scope.GlobalScope
	FileSet *token.FileSet
	// errors are those which do not belong to the inference of a single file
	errors *ilerr.Errors
}

// Errors returns every error found in the program
func (p *Program) Errors() *ilerr.Errors {
	return (&ilerr.Errors{}).Merge(p.errors).Merge(p.Global.Errors())
}

func (p *Program) File(path string) (*scope.FileScope, bool) {
	return p.Global.File(path)
}

// ImportPath resolves the path of an import relative to the file it appears in
func ImportPath(from string, imp *syntax.Import) string {
	return path.Join(path.Dir(from), imp.Path)
}

func dependencies(from string, prog *syntax.Program) []string {
	imports := scope.Imports(prog)
	deps := make([]string, len(imports))
	for i, imp := range imports {
		deps[i] = ImportPath(from, imp)
	}
	return deps
}

// Load reads the entry file and every file it imports from fsys, then infers them,
// dependencies first.
//
// An error is returned only when a file cannot be read or decoded: problems in the
// program itself are reported by Program.Errors.
// Imports of files which do not exist are left to inference to report.
func Load(fsys fs.FS, settings Settings) (*Program, error) {
	entry := settings.Entry
	if entry == "" {
		entry = DefaultEntry
	}
	entry = path.Clean(entry)
	p := &Program{
		Entry:   entry,
		Global:  scope.NewGlobalScope(),
		FileSet: token.NewFileSet(),
		errors:  &ilerr.Errors{},
	}

	files := make(map[string]*scope.FileScope)
	var paths []string
	visited := set.New[string](0)
	queue := []string{entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !visited.Insert(current) {
			continue
		}
		data, err := fs.ReadFile(fsys, current)
		if err != nil {
			if current != entry && errors.Is(err, fs.ErrNotExist) {
				programLogger.Debug("imported file does not exist", "path", current)
				continue
			}
			return nil, fmt.Errorf("read %s: %w", current, err)
		}
		prog, err := syntax.Decode(p.FileSet, current, data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", current, err)
		}
		deps := dependencies(current, prog)
		files[current] = scope.NewFileScope(current, prog, deps)
		paths = append(paths, current)
		queue = append(queue, deps...)
		programLogger.Debug("loaded file", "path", current, "dependencies", deps)
	}

	ordered, err := p.order(files, paths)
	if err != nil {
		return nil, err
	}

	fresher := types.NewFresher()
	for _, filePath := range ordered {
		file := files[filePath]
		infer.File(file, p.Global, fresher)
		p.Global.Add(file)
		programLogger.Debug("inferred file", "path", filePath, "errors", file.Errors.Len())
	}
	return p, nil
}

// order sorts the loaded files so that every file comes after its dependencies. Files
// on an import cycle are reported and left out, as are the files which depend on them,
// and the rest is ordered again.
func (p *Program) order(files map[string]*scope.FileScope, paths []string) ([]string, error) {
	loaded := func(from string) []string {
		return slices.DeleteFunc(slices.Clone(files[from].Dependencies), func(dep string) bool {
			_, ok := files[dep]
			return !ok
		})
	}
	skipped := set.New[string](0)
	for {
		remaining := slices.DeleteFunc(slices.Clone(paths), skipped.Contains)
		ordered, err := modgraph.Order(remaining, loaded)
		var cycle *modgraph.CycleError[string]
		var unknown *modgraph.UnknownDependencyError[string]
		switch {
		case err == nil:
			return ordered, nil
		case errors.As(err, &cycle):
			p.errors = p.errors.With(p.cycleError(files[cycle.From], cycle))
			skipped.InsertSlice(cycle.Chain)
			skipped.Insert(cycle.From)
			skipped.Insert(cycle.To)
		case errors.As(err, &unknown) && skipped.Contains(unknown.To):
			programLogger.Debug("not inferring file which depends on a cycle", "path", unknown.From, "dependency", unknown.To)
			skipped.Insert(unknown.From)
		default:
			return nil, fmt.Errorf("order files: %w", err)
		}
	}
}

// cycleError reports a cycle at the import of from which closes it
func (p *Program) cycleError(from *scope.FileScope, cycle *modgraph.CycleError[string]) ilerr.IleError {
	var at syntax.Node
	for i, imp := range scope.Imports(from.Program) {
		if from.Dependencies[i] == cycle.To {
			at = imp
			break
		}
	}
	return ilerr.New(ilerr.NewCyclicDependency{
		Loc:   ilerr.At(from.Path, at),
		From:  cycle.From,
		To:    cycle.To,
		Chain: cycle.Chain,
	})
}
