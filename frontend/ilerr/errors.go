package ilerr

import (
	"cmp"
	"fmt"
	"go/token"
	"log/slog"
	"slices"
)

type Errors struct {
	errs []IleError
}

func (r *Errors) With(err ...IleError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []IleError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// Len is the number of errors collected so far
func (r *Errors) Len() int {
	if r == nil {
		return 0
	}
	return len(r.errs)
}

// Sorted returns the errors ordered by file, then position
func (r *Errors) Sorted() []IleError {
	sorted := slices.Clone(r.Errors())
	slices.SortStableFunc(sorted, func(a, b IleError) int {
		if c := cmp.Compare(a.File(), b.File()); c != 0 {
			return c
		}
		return cmp.Compare(a.Pos(), b.Pos())
	})
	return sorted
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}

// FormatAt prefixes FormatWithCode with the source position of e, when fset knows it
func FormatAt(fset *token.FileSet, e IleError) string {
	if fset != nil && e.Pos().IsValid() && fset.File(e.Pos()) != nil {
		return fmt.Sprintf("%s: %s", fset.Position(e.Pos()), FormatWithCode(e))
	}
	if e.File() != "" {
		return fmt.Sprintf("%s: %s", e.File(), FormatWithCode(e))
	}
	return FormatWithCode(e)
}
