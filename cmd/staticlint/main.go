/*
Staticlint запускает multichecker для проекта.

Состав анализаторов:

1. Стандартные анализаторы golang.org/x/tools/go/analysis/passes:
  - printf, structtag, errorsas, httpresponse, nilness, shadow, unreachable, bools, copylocks

2. Анализаторы staticcheck.io:
  - все SA-анализаторы
  - S1000 (упрощения) и ST1005 (формат текстов ошибок)

3. Сторонние анализаторы:
  - asciicheck: запрещает не-ASCII символы в идентификаторах
  - errcheck: проверяет, что возвращаемые ошибки обработаны

4. Собственный анализатор:
  - noexit: запрещает os.Exit и log.Fatal в функции main пакета main

Запуск:

	go run ./cmd/staticlint ./...
*/
package main

import (
	"github.com/kisielk/errcheck/errcheck"
	"github.com/tdakkota/asciicheck"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/anpinghuang/tiktok-void-backend/cmd/staticlint/noexit"
)

// extraChecks — выборочные проверки из классов S и ST
var extraChecks = map[string]bool{
	"S1000":  true,
	"ST1005": true,
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		printf.Analyzer,
		structtag.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		nilness.Analyzer,
		shadow.Analyzer,
		unreachable.Analyzer,
		bools.Analyzer,
		copylock.Analyzer,
	}

	for _, a := range staticcheck.Analyzers {
		list = append(list, a.Analyzer)
	}
	for _, a := range simple.Analyzers {
		if extraChecks[a.Analyzer.Name] {
			list = append(list, a.Analyzer)
		}
	}
	for _, a := range stylecheck.Analyzers {
		if extraChecks[a.Analyzer.Name] {
			list = append(list, a.Analyzer)
		}
	}

	return append(list,
		asciicheck.NewAnalyzer(),
		errcheck.Analyzer,
		noexit.Analyzer,
	)
}

func main() {
	multichecker.Main(analyzers()...)
}
