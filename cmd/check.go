package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/internal/log"
	"github.com/cottand/sema/program"
	"github.com/eaburns/pretty"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check file.yaml",
	Short:        "Type-check a program, starting from its entry file",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	logLevel  *int
	showTypes *bool
	dump      *bool
)

func init() {
	logLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
	showTypes = CheckCmd.Flags().Bool("show-types", false, "print every exported binding with its type")
	dump = CheckCmd.Flags().Bool("dump", false, "print the bindings of every scope of every file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("could not get absolute path of target: %w", err)
	}
	prog, err := program.Load(os.DirFS(filepath.Dir(target)), program.Settings{
		Entry: filepath.Base(target),
	})
	if err != nil {
		return fmt.Errorf("could not load program: %w", err)
	}

	out := cmd.OutOrStdout()
	if *showTypes {
		printTypes(out, prog)
	}
	if *dump {
		pretty.Indent = "    "
		for _, file := range prog.Global.Files() {
			_, _ = fmt.Fprintf(out, "%s:\n%s\n", file.Path, pretty.String(dumpScopes(file)))
		}
	}

	errs := prog.Errors()
	if !errs.HasError() {
		return nil
	}
	for _, e := range errs.Sorted() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), ilerr.FormatAt(prog.FileSet, e))
	}
	return fmt.Errorf("%d errors found", errs.Len())
}

func printTypes(out io.Writer, prog *program.Program) {
	for path, file := range prog.Global.All() {
		for _, b := range file.Exports() {
			_, _ = fmt.Fprintf(out, "%s: %s: %v\n", path, b.Name, b.Type)
		}
	}
}

type dumpedBinding struct {
	Name     string
	Type     string
	Exported bool
	Imported bool
}

type dumpedScope struct {
	ID       scope.ScopeID
	Kind     string
	Bindings []dumpedBinding
}

func dumpScopes(file *scope.FileScope) []dumpedScope {
	var scopes []dumpedScope
	for id := range file.Table.Len() {
		s := file.Table.Scope(scope.ScopeID(id))
		if s.MergedInto != scope.NoScope {
			continue
		}
		dumped := dumpedScope{ID: s.ID, Kind: s.Kind.String()}
		for _, b := range s.Bindings() {
			dumped.Bindings = append(dumped.Bindings, dumpedBinding{
				Name:     b.Name,
				Type:     b.Type.String(),
				Exported: b.Exported,
				Imported: b.Imported,
			})
		}
		scopes = append(scopes, dumped)
	}
	return scopes
}
