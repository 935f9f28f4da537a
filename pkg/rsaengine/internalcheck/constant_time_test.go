package internalcheck

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

func TestNoDirectByteComparison(t *testing.T) {
	pkgs := load(t, packages.NeedSyntax|packages.NeedTypes|packages.NeedTypesInfo, enginePackages...)

	var findings []string
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				be, ok := n.(*ast.BinaryExpr)
				if !ok || (be.Op != token.EQL && be.Op != token.NEQ) {
					return true
				}
				if isBytes(pkg.TypesInfo.TypeOf(be.X)) && isBytes(pkg.TypesInfo.TypeOf(be.Y)) {
					findings = append(findings, fmt.Sprintf("%s: avoid == on byte slices; use crypto/subtle", pkg.Fset.Position(be.Pos())))
				}
				return true
			})
		}
	}

	if len(findings) > 0 {
		t.Fatalf("constant-time policy violation:\n%s", strings.Join(findings, "\n"))
	}
}

// variableTime lists calls whose running time depends on where the first
// difference or match lies.
var variableTime = map[string]map[string]bool{
	"bytes": {
		"Equal": true, "Compare": true, "HasPrefix": true, "HasSuffix": true,
		"Index": true, "IndexByte": true, "IndexAny": true, "LastIndex": true,
		"LastIndexByte": true, "Contains": true, "Cut": true,
	},
	"slices": {"Equal": true, "Index": true, "Contains": true, "Compare": true},
}

func TestPaddingAvoidsVariableTimeSearch(t *testing.T) {
	pkgs := load(t, packages.NeedSyntax|packages.NeedTypes|packages.NeedTypesInfo,
		modulePath+"/pkg/rsaengine/padding", modulePath+"/pkg/rsaengine")

	var findings []string
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				obj := pkg.TypesInfo.Uses[sel.Sel]
				if obj == nil || obj.Pkg() == nil {
					return true
				}
				if variableTime[obj.Pkg().Path()][obj.Name()] {
					findings = append(findings, fmt.Sprintf("%s: %s.%s is variable time; use crypto/subtle",
						pkg.Fset.Position(call.Pos()), obj.Pkg().Path(), obj.Name()))
				}
				return true
			})
		}
	}

	if len(findings) > 0 {
		t.Fatalf("padding timing policy violation:\n%s", strings.Join(findings, "\n"))
	}
}

func isBytes(typ types.Type) bool {
	switch tt := typ.(type) {
	case *types.Slice:
		return isByte(tt.Elem())
	case *types.Array:
		return isByte(tt.Elem())
	case *types.Pointer:
		return isBytes(tt.Elem())
	case *types.Named:
		return isBytes(tt.Underlying())
	}
	return false
}

func isByte(t types.Type) bool {
	basic, ok := t.(*types.Basic)
	return ok && basic.Kind() == types.Byte
}
