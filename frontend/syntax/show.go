package syntax

import (
	"strconv"
	"strings"
)

// Show renders node back into a source-like string, for logs and error messages
func Show(node Node) string {
	ctx := newShowContext()
	ctx.show(node)
	return ctx.String()
}

type showContext struct {
	*strings.Builder
	indent    int
	indentStr string
}

func newShowContext() *showContext {
	return &showContext{
		Builder:   &strings.Builder{},
		indentStr: "  ",
		indent:    0,
	}
}

func (ctx *showContext) currentIndent() string {
	return strings.Repeat(ctx.indentStr, ctx.indent)
}

func (ctx *showContext) showAll(nodes []Node, sep string) {
	for i, node := range nodes {
		if i > 0 {
			ctx.WriteString(sep)
		}
		ctx.show(node)
	}
}

func (ctx *showContext) showPatterns(patterns []Pattern, sep string) {
	for i, p := range patterns {
		if i > 0 {
			ctx.WriteString(sep)
		}
		ctx.show(p)
	}
}

func (ctx *showContext) statements(stmts []Node) {
	ctx.WriteString("{\n")
	ctx.indent++
	for _, stmt := range stmts {
		ctx.WriteString(ctx.currentIndent())
		ctx.show(stmt)
		ctx.WriteString("\n")
	}
	ctx.indent--
	ctx.WriteString(ctx.currentIndent() + "}")
}

func (ctx *showContext) show(node Node) {
	if node == nil {
		ctx.WriteString("nil")
		return
	}
	switch node := node.(type) {
	case *Program:
		ctx.statements(node.Statements)
	case *Number:
		ctx.WriteString(node.Syntax)
	case *String:
		ctx.WriteString(strconv.Quote(node.Value))
	case *Boolean:
		ctx.WriteString(strconv.FormatBool(node.Value))
	case *Identifier:
		ctx.WriteString(node.Name)
	case *List:
		ctx.WriteString("[")
		ctx.showAll(node.Elements, ", ")
		ctx.WriteString("]")
	case *Tuple:
		ctx.WriteString("(")
		ctx.showAll(node.Elements, ", ")
		ctx.WriteString(")")
	case *Map:
		ctx.WriteString("{")
		for i, entry := range node.Entries {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.show(entry.Key)
			ctx.WriteString(": ")
			ctx.show(entry.Value)
		}
		ctx.WriteString("}")
	case *Application:
		ctx.show(node.Function)
		ctx.WriteString("(")
		if node.Argument != nil {
			ctx.show(node.Argument)
		}
		ctx.WriteString(")")
	case *Abstraction:
		for i, branch := range node.Branches {
			if i > 0 {
				ctx.WriteString(" | ")
			}
			ctx.WriteString("fn(")
			ctx.showPatterns(branch.Params, ", ")
			ctx.WriteString(") -> ")
			ctx.show(branch.Body)
		}
	case *Assignment:
		if node.Exported {
			ctx.WriteString("export ")
		}
		ctx.show(node.Pattern)
		ctx.WriteString(" = ")
		ctx.show(node.Value)
	case *Block:
		ctx.statements(node.Statements)
	case *When:
		ctx.WriteString("when ")
		ctx.show(node.Subject)
		ctx.WriteString(" {\n")
		ctx.indent++
		for _, c := range node.Cases {
			ctx.WriteString(ctx.currentIndent())
			ctx.showPatterns(c.Patterns, " | ")
			ctx.WriteString(" -> ")
			ctx.show(c.Body)
			ctx.WriteString("\n")
		}
		ctx.indent--
		ctx.WriteString(ctx.currentIndent() + "}")
	case *If:
		ctx.WriteString("if ")
		ctx.show(node.Condition)
		ctx.WriteString(" then ")
		ctx.show(node.Then)
		if node.Else != nil {
			ctx.WriteString(" else ")
			ctx.show(node.Else)
		}
	case *For:
		ctx.WriteString("for ")
		for i, gen := range node.Generators {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.show(gen.Pattern)
			ctx.WriteString(" in ")
			ctx.show(gen.Iterable)
		}
		ctx.WriteString(" -> ")
		ctx.show(node.Body)
	case *Access:
		ctx.show(node.Target)
		ctx.WriteString("." + node.Member)
	case *Annotated:
		ctx.show(node.Value)
		ctx.WriteString(": ")
		ctx.show(node.Type)
	case *Import:
		ctx.WriteString("import " + strconv.Quote(node.Path))
		if node.Alias != "" {
			ctx.WriteString(" as " + node.Alias)
		}
		if len(node.Names) > 0 {
			ctx.WriteString(" (" + strings.Join(node.Names, ", ") + ")")
		}
	case *Module:
		if node.Exported {
			ctx.WriteString("export ")
		}
		ctx.WriteString("module " + node.Name + " ")
		ctx.statements(node.Statements)
	case *Class:
		if node.Exported {
			ctx.WriteString("export ")
		}
		ctx.WriteString("class " + node.Name + "(")
		for i, field := range node.Fields {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.WriteString(field.Name + ": ")
			ctx.show(field.Type)
		}
		ctx.WriteString(")")
	case *Enum:
		if node.Exported {
			ctx.WriteString("export ")
		}
		ctx.WriteString("enum " + node.Name + " { ")
		for i, variant := range node.Variants {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.WriteString(variant.Name)
			if len(variant.Fields) > 0 {
				ctx.WriteString("(")
				for j, field := range variant.Fields {
					if j > 0 {
						ctx.WriteString(", ")
					}
					ctx.show(field)
				}
				ctx.WriteString(")")
			}
		}
		ctx.WriteString(" }")
	case *TypeExpr:
		ctx.WriteString(node.Name)
		if len(node.Args) > 0 {
			ctx.WriteString("<")
			for i, arg := range node.Args {
				if i > 0 {
					ctx.WriteString(", ")
				}
				ctx.show(arg)
			}
			ctx.WriteString(">")
		}
	case *IdentifierPattern:
		ctx.WriteString(node.Name)
		if node.Annotation != nil {
			ctx.WriteString(": ")
			ctx.show(node.Annotation)
		}
	case *WildcardPattern:
		ctx.WriteString("_")
	case *LiteralPattern:
		ctx.show(node.Literal)
	case *TuplePattern:
		ctx.WriteString("(")
		ctx.showPatterns(node.Elements, ", ")
		ctx.WriteString(")")
	case *ListPattern:
		ctx.WriteString("[")
		ctx.showPatterns(node.Elements, ", ")
		if node.Rest != nil {
			if len(node.Elements) > 0 {
				ctx.WriteString(", ")
			}
			ctx.WriteString("..." + node.Rest.Name)
		}
		ctx.WriteString("]")
	case *ConstructorPattern:
		ctx.WriteString(node.Name)
		if len(node.Args) > 0 {
			ctx.WriteString("(")
			ctx.showPatterns(node.Args, ", ")
			ctx.WriteString(")")
		}
	default:
		ctx.WriteString("<" + node.Kind().String() + ">")
	}
}
