// This file contains static parsing of .star macro files. It extracts function
// metadata without executing anything.

package macro

import (
	"path/filepath"
	"strings"

	"go.starlark.net/syntax"
)

// ParsedFunction is a function found in a .star file.
type ParsedFunction struct {
	Name      string   // Function name
	Args      []string // Parameter names, defaults rendered as "x=None"
	Docstring string
	Line      int
}

// ParsedNamespace is a statically parsed .star file.
type ParsedNamespace struct {
	Name      string // Filename without .star
	FilePath  string
	Functions []*ParsedFunction
}

// ParseStarlarkFile statically parses a .star file and extracts the public
// functions it defines.
func ParseStarlarkFile(filename string, content []byte) (*ParsedNamespace, error) {
	f, err := (&syntax.FileOptions{}).Parse(filename, content, 0)
	if err != nil {
		return nil, &LoadError{File: filename, Message: err.Error()}
	}

	ns := &ParsedNamespace{
		Name:     strings.TrimSuffix(filepath.Base(filename), ".star"),
		FilePath: filename,
	}

	for _, stmt := range f.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok || strings.HasPrefix(def.Name.Name, "_") {
			continue
		}

		ns.Functions = append(ns.Functions, &ParsedFunction{
			Name:      def.Name.Name,
			Line:      int(def.Name.NamePos.Line),
			Args:      extractArgs(def.Params),
			Docstring: extractDocstring(def.Body),
		})
	}

	return ns, nil
}

// Function returns the parsed function called name, or nil.
func (ns *ParsedNamespace) Function(name string) *ParsedFunction {
	for _, fn := range ns.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// extractArgs converts syntax parameters to string representations.
func extractArgs(params []syntax.Expr) []string {
	var args []string
	for _, param := range params {
		switch p := param.(type) {
		case *syntax.Ident:
			args = append(args, p.Name)
		case *syntax.BinaryExpr:
			// def foo(x=1)
			if p.Op == syntax.EQ {
				if ident, ok := p.X.(*syntax.Ident); ok {
					args = append(args, ident.Name+"="+exprToString(p.Y))
				}
			}
		case *syntax.UnaryExpr:
			// *args or **kwargs
			if ident, ok := p.X.(*syntax.Ident); ok {
				prefix := "*"
				if p.Op == syntax.STARSTAR {
					prefix = "**"
				}
				args = append(args, prefix+ident.Name)
			}
		}
	}
	return args
}

// extractDocstring returns the leading string literal of a function body.
func extractDocstring(body []syntax.Stmt) string {
	if len(body) == 0 {
		return ""
	}

	exprStmt, ok := body[0].(*syntax.ExprStmt)
	if !ok {
		return ""
	}

	lit, ok := exprStmt.X.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return ""
	}

	s, ok := lit.Value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func exprToString(expr syntax.Expr) string {
	switch e := expr.(type) {
	case *syntax.Literal:
		return e.Raw
	case *syntax.Ident:
		return e.Name
	case *syntax.ListExpr:
		return "[]"
	case *syntax.DictExpr:
		return "{}"
	case *syntax.TupleExpr:
		return "()"
	case *syntax.UnaryExpr:
		if e.Op == syntax.MINUS {
			return "-" + exprToString(e.X)
		}
		return exprToString(e.X)
	default:
		return "..."
	}
}

// splitParams separates required and optional parameter names.
// *args and **kwargs are skipped.
func splitParams(args []string) (required, optional []string) {
	for _, a := range args {
		if strings.HasPrefix(a, "*") {
			continue
		}
		if name, _, ok := strings.Cut(a, "="); ok {
			optional = append(optional, name)
			continue
		}
		required = append(required, a)
	}
	return required, optional
}
