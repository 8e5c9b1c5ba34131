package orchestrator

import (
	"sync"
	"testing"

	"github.com/sodigy-lang/sodigy/internal/cache"
	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

func TestCommandSimplify(t *testing.T) {
	cmd := PerFileIrCommand("main.sdg", "main", ident.NoneSpan, "", true, cache.StageHIR)
	if got, want := string(cmd.Simplify()), "PerFileIr(main, stop_after=hir)"; got != want {
		t.Errorf("Simplify() = %q, want %q", got, want)
	}
}

// fakeExecutor is a test double for Executor (worker.go's doc comment calls
// this out explicitly: decoupling Worker from the real CompileExecutor lets
// the scheduler's tests swap in a fake). It records every command it ran and
// can simulate module discovery and per-module failure.
type fakeExecutor struct {
	mu            sync.Mutex
	perFileCalls  []string
	interHirCalls int
	interMirCalls int
	codeGenCalls  int

	discover map[string][]string // moduleName -> newly-discovered module names
	failing  map[string]bool     // module names whose PerFileIr reports an error
}

func (f *fakeExecutor) Execute(cmd Command, report func(MessageToMain)) error {
	switch cmd.Kind() {
	case CmdPerFileIr:
		f.mu.Lock()
		f.perFileCalls = append(f.perFileCalls, cmd.ModulePath)
		discovered := f.discover[cmd.ModulePath]
		fail := f.failing[cmd.ModulePath]
		f.mu.Unlock()

		if cmd.FindModules {
			for _, name := range discovered {
				report(AddModuleMessage(name, ident.NoneSpan))
			}
		}
		if fail {
			errs := []*diag.Report{diag.New(diag.CodeModuleCompileFailed, diag.SeverityError, "boom", ident.NoneSpan)}
			report(IrCompleteMessage(cmd.ModulePath, string(cmd.StopAfter), errs, nil))
			return nil
		}
		report(IrCompleteMessage(cmd.ModulePath, string(cmd.StopAfter), nil, nil))
	case CmdInterHir:
		f.mu.Lock()
		f.interHirCalls++
		f.mu.Unlock()
		report(IrCompleteMessage("", string(cache.StageInterHIR), nil, nil))
	case CmdInterMir:
		f.mu.Lock()
		f.interMirCalls++
		f.mu.Unlock()
		report(IrCompleteMessage("", string(cache.StageInterMIR), nil, nil))
	case CmdCodeGen:
		f.mu.Lock()
		f.codeGenCalls++
		f.mu.Unlock()
		report(IrCompleteMessage("", string(cache.StageCodeGen), nil, nil))
	}
	return nil
}

func (f *fakeExecutor) countPerFile(module string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.perFileCalls {
		if m == module {
			n++
		}
	}
	return n
}

func TestSchedulerRunProjectSuccess(t *testing.T) {
	fake := &fakeExecutor{}
	channels := InitWorkersAndChannels(2, fake)
	sched := NewScheduler(channels)
	defer sched.Shutdown()

	ok := sched.RunProject(map[string]string{"main": "main.sdg"}, "", "bytecode", "")
	if !ok {
		t.Fatalf("expected RunProject to succeed, diagnostics: %v", sched.Bag().Errors())
	}
	if fake.interHirCalls != 1 {
		t.Errorf("interHirCalls = %d, want 1", fake.interHirCalls)
	}
	if fake.interMirCalls != 1 {
		t.Errorf("interMirCalls = %d, want 1", fake.interMirCalls)
	}
	if fake.codeGenCalls != 1 {
		t.Errorf("codeGenCalls = %d, want 1", fake.codeGenCalls)
	}
	// main is compiled once for the HIR stage and once for the MIR stage.
	if n := fake.countPerFile("main"); n != 2 {
		t.Errorf("main compiled %d times, want 2", n)
	}
}

func TestSchedulerDiscoversModulesViaAddModule(t *testing.T) {
	fake := &fakeExecutor{
		discover: map[string][]string{"main": {"util"}},
	}
	channels := InitWorkersAndChannels(2, fake)
	sched := NewScheduler(channels)
	defer sched.Shutdown()

	ok := sched.RunProject(map[string]string{"main": "main.sdg"}, "", "bytecode", "")
	if !ok {
		t.Fatalf("expected RunProject to succeed, diagnostics: %v", sched.Bag().Errors())
	}
	// util is discovered only via main's AddModule during the HIR stage, and
	// is then swept into the MIR stage automatically — compiled twice, never
	// more, even though nothing else imports it again.
	if n := fake.countPerFile("util"); n != 2 {
		t.Errorf("util compiled %d times, want 2 (once discovered, once re-queued for mir)", n)
	}
}

func TestSchedulerFailFastStopsAtFirstStage(t *testing.T) {
	fake := &fakeExecutor{
		failing: map[string]bool{"main": true},
	}
	channels := InitWorkersAndChannels(2, fake)
	sched := NewScheduler(channels)
	defer sched.Shutdown()

	ok := sched.RunProject(map[string]string{"main": "main.sdg"}, "", "bytecode", "")
	if ok {
		t.Fatal("expected RunProject to fail fast on a per-file error")
	}
	if fake.interHirCalls != 0 {
		t.Errorf("interHirCalls = %d, want 0 (the InterHir barrier must never dispatch after a failed per-file stage)", fake.interHirCalls)
	}
	if fake.codeGenCalls != 0 {
		t.Errorf("codeGenCalls = %d, want 0", fake.codeGenCalls)
	}
	if !sched.Bag().HasErrors() {
		t.Fatal("expected the scheduler's diagnostic bag to carry the reported error")
	}
}

func TestChannelJoinDrainsLogOnShutdown(t *testing.T) {
	fake := &fakeExecutor{}
	channels := InitWorkersAndChannels(1, fake)
	sched := NewScheduler(channels)

	ok := sched.RunProject(map[string]string{"main": "main.sdg"}, "", "bytecode", "")
	if !ok {
		t.Fatalf("expected RunProject to succeed, diagnostics: %v", sched.Bag().Errors())
	}

	logs := sched.Shutdown()
	entries, ok := logs[channels[0].WorkerID]
	if !ok {
		t.Fatal("expected a log entry slice for the single worker")
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one recorded command in the worker's log")
	}
}
