// Package noexit запрещает завершать процесс из функции main пакета main:
// прямые вызовы os.Exit и log.Fatal* обходят отложенные вызовы, в том числе
// корректную остановку HTTP-сервера.
package noexit

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer сообщает о вызовах os.Exit и log.Fatal* внутри main
var Analyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "reports os.Exit and log.Fatal calls inside func main of package main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if name, ok := exitCall(pass, call); ok {
				pass.Reportf(call.Pos(), "%s call in main is forbidden, return an error instead", name)
			}
			return true
		})
	})

	return nil, nil
}

// exitCall определяет, завершает ли вызов процесс
func exitCall(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return "", false
	}
	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return "", false
	}

	path, fn := pkgName.Imported().Path(), sel.Sel.Name
	switch {
	case path == "os" && fn == "Exit":
		return "os.Exit", true
	case path == "log" && strings.HasPrefix(fn, "Fatal"):
		return "log." + fn, true
	}
	return "", false
}
