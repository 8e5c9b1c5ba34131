package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/dtree"
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
	"github.com/sodigy-lang/sodigy/internal/solver"
	"github.com/sodigy-lang/sodigy/internal/surface"
)

// walkMatches mirrors internal/orchestrator's unexported helper of the same
// name: it runs the match compiler over every match expression reachable
// from e, reporting exhaustiveness/redundancy diagnostics into bag.
func walkMatches(e *mir.Expr, bag *diag.Bag) {
	if e == nil {
		return
	}
	if e.IsMatch() {
		if dtree.CanCompile(e.Arms) {
			dtree.CompileMatch(e, bag)
		}
		for _, arm := range e.Arms {
			walkMatches(arm.Body, bag)
		}
		walkMatches(e.Scrutinee, bag)
		return
	}
	switch {
	case e.IsIf():
		walkMatches(e.Cond, bag)
		walkMatches(e.Then, bag)
		walkMatches(e.Else, bag)
	case e.IsBlock():
		for _, l := range e.Lets {
			walkMatches(l.Value, bag)
		}
		walkMatches(e.Value, bag)
	case e.IsFieldAccess():
		walkMatches(e.Receiver, bag)
	case e.IsFieldUpdate():
		walkMatches(e.Receiver, bag)
		walkMatches(e.NewValue, bag)
	case e.IsCall():
		for _, a := range e.Args {
			walkMatches(a, bag)
		}
	}
}

// historyFile is where REPL line history persists across sessions,
// matching internal/repl.Start's os.TempDir-based history file.
var historyFile = filepath.Join(os.TempDir(), ".sodigyc_history")

var replCompleterCommands = []string{":help", ":quit", ":reset", ":env"}

func cmdInterpret(args []string) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetCompleter(func(in string) (c []string) {
		if strings.HasPrefix(in, ":") {
			for _, cmd := range replCompleterCommands {
				if strings.HasPrefix(cmd, in) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	fmt.Println(bold("sodigyc interpret"))
	fmt.Println(yellow("type :help for help, :quit to exit"))

	r := newReplSession()

	for {
		input, err := line.Prompt("sodigy> ")
		if err == io.EOF {
			fmt.Println(green("\ngoodbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit", ":q":
			fmt.Println(green("goodbye"))
			goto done
		case ":help":
			printReplHelp()
			continue
		case ":reset":
			r = newReplSession()
			fmt.Println(green("environment reset"))
			continue
		case ":env":
			r.printEnv()
			continue
		}

		r.eval(input)
	}
done:

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	return 0
}

func printReplHelp() {
	fmt.Println("  :help    show this message")
	fmt.Println("  :env     list bound function signatures")
	fmt.Println("  :reset   clear all bindings")
	fmt.Println("  :quit    exit the REPL")
	fmt.Println("Otherwise, enter a top-level `fn` declaration to bind it and report its solved type.")
}

// replSession accumulates function declarations across REPL turns, each
// one solved against every previously-bound function's shape — the same
// funcShapes table internal/orchestrator's CompileExecutor builds per file,
// just grown incrementally instead of all at once.
type replSession struct {
	langItems  map[string]ident.Span
	funcShapes map[ident.Span]mir.FuncShape
	funcNames  map[string]ident.Span
	nextFile   ident.FileID
}

func newReplSession() *replSession {
	return &replSession{
		langItems:  preludeLangItems(),
		funcShapes: map[ident.Span]mir.FuncShape{},
		funcNames:  map[string]ident.Span{},
	}
}

// preludeLangItems mirrors internal/orchestrator's unexported helper of the
// same name: the scaffolding frontend has no real prelude to parse, so the
// REPL seeds the same synthetic lang-item spans the batch compiler does.
func preludeLangItems() map[string]ident.Span {
	names := []string{"Int", "Number", "String", "Char", "Byte", "Bool", "List", "Never", "Unit"}
	out := make(map[string]ident.Span, len(names))
	for _, name := range names {
		out[name] = ident.NewPolySpan(ident.Intern("lang-item:"+name), ident.PolyKindGenericDef)
	}
	return out
}

func (r *replSession) printEnv() {
	if len(r.funcNames) == 0 {
		fmt.Println(yellow("(no bindings)"))
		return
	}
	for name := range r.funcNames {
		fmt.Printf("  %s\n", cyan(name))
	}
}

func (r *replSession) eval(input string) {
	bag := &diag.Bag{}
	fileID := r.nextFile
	r.nextFile++

	parser := surface.NewParser(input)
	prog := parser.ParseProgram()
	for _, e := range parser.Errors() {
		bag.Add(diag.New(diag.CodeModuleCompileFailed, diag.SeverityError, e, ident.NoneSpan))
	}

	mod := surface.Lower(fileID, "repl", prog, bag)

	for _, fn := range mod.Funcs {
		r.funcShapes[fn.DefSpan] = fn.Shape
		r.funcNames[fn.Name] = fn.DefSpan
	}

	structShapes := map[ident.Span]mir.StructShape{}
	s := solver.New(r.funcShapes, structShapes, r.langItems)

	for _, fn := range mod.Funcs {
		fc := solver.FuncCtx{FuncSpan: fn.DefSpan}
		ty := s.SolveExpr(fn.Body, fc)
		walkMatches(fn.Body, bag)
		if !s.Bag.HasErrors() {
			fmt.Printf("%s %s : %s\n", green("✓"), bold(fn.Name), ty.String())
		}
	}
	bag.Reports = append(bag.Reports, s.Bag.Reports...)

	for _, rep := range bag.Sorted() {
		fmt.Fprintln(os.Stderr, diag.RenderHuman(rep))
	}
}
