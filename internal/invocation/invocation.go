// SPDX-License-Identifier: MPL-2.0

package invocation

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/pkgsettings/pkgsettings/internal/resolve"
)

const (
	// Prefix starts every directive comment.
	Prefix = "//settings:def"
	// Callee is the only function name accepted on the right-hand side.
	Callee = "settings"
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("invalid settings directive")

type (
	// Directive is one parsed settings directive.
	Directive struct {
		// Name is the Go identifier to declare.
		Name string
		// Path is the setting to resolve.
		Path resolve.Path
		// Pos is the position of the directive comment.
		Pos token.Position
	}

	// SyntaxError reports a malformed directive.
	SyntaxError struct {
		Pos token.Position
		Msg string
	}
)

// Error implements the error interface. Valid positions are prefixed as file:line:col.
func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// IsDirective reports whether a comment's text is a settings directive.
func IsDirective(text string) bool {
	rest, ok := strings.CutPrefix(text, Prefix)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

// ParseDirective parses the text of a directive comment, including the leading "//".
func ParseDirective(text string) (Directive, error) {
	if !IsDirective(text) {
		return Directive{}, syntaxErrorf("comment does not start with %s", Prefix)
	}
	rest := text[len(Prefix):]

	lhs, rhs, found := strings.Cut(rest, "=")
	if !found {
		return Directive{}, syntaxErrorf("expected %s Name = %s(\"namespace\", \"key\")", Prefix, Callee)
	}

	name := strings.TrimSpace(lhs)
	switch {
	case name == "":
		return Directive{}, syntaxErrorf("missing identifier before '='")
	case name == "_":
		return Directive{}, syntaxErrorf("blank identifier cannot be declared")
	case !token.IsIdentifier(name):
		return Directive{}, syntaxErrorf("%q is not a valid Go identifier", name)
	case name == "init":
		return Directive{}, syntaxErrorf("init cannot be declared as a setting")
	case types.Universe.Lookup(name) != nil:
		// The generated file refers to predeclared types and constants.
		return Directive{}, syntaxErrorf("%s shadows a predeclared identifier", name)
	}

	path, err := ParseCall(strings.TrimSpace(rhs))
	if err != nil {
		return Directive{}, err
	}
	return Directive{Name: name, Path: path}, nil
}

// ParseCall parses settings("namespace", "key"). Both arguments must be non-empty string
// literals; interpreted and raw literals are accepted.
func ParseCall(src string) (resolve.Path, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return resolve.Path{}, syntaxErrorf("cannot parse %q: %v", src, err)
	}

	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return resolve.Path{}, syntaxErrorf("expected a call to %s, found %q", Callee, src)
	}
	if fun, isIdent := call.Fun.(*ast.Ident); !isIdent || fun.Name != Callee {
		return resolve.Path{}, syntaxErrorf("expected a call to %s, found %q", Callee, src)
	}
	if call.Ellipsis.IsValid() {
		return resolve.Path{}, syntaxErrorf("%s does not accept variadic arguments", Callee)
	}
	if len(call.Args) != 2 {
		return resolve.Path{}, syntaxErrorf("%s expects 2 arguments (namespace, key), got %d", Callee, len(call.Args))
	}

	args := make([]string, 2)
	for i, arg := range call.Args {
		lit, isLit := arg.(*ast.BasicLit)
		if !isLit || lit.Kind != token.STRING {
			return resolve.Path{}, syntaxErrorf("argument %d of %s must be a string literal", i+1, Callee)
		}
		value, unquoteErr := strconv.Unquote(lit.Value)
		if unquoteErr != nil {
			return resolve.Path{}, syntaxErrorf("argument %d of %s: %v", i+1, Callee, unquoteErr)
		}
		if value == "" {
			return resolve.Path{}, syntaxErrorf("argument %d of %s must not be empty", i+1, Callee)
		}
		args[i] = value
	}

	return resolve.Path{Namespace: args[0], Key: args[1]}, nil
}

func syntaxErrorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}
