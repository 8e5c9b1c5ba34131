package orchestrator

import (
	"fmt"
	"time"

	"github.com/sodigy-lang/sodigy/internal/cache"
	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

// Scheduler drives a project's worker pool through the linear stage order
// of spec §4.5.1, dispatching PerFileIr commands round-robin across
// workers and running the InterHir/InterMir barrier stages once every
// module has reached the stage the barrier depends on. Grounded on
// original_source/src/worker.rs's module-discovery loop (the `find_modules`
// flag and the `AddModule` message it sends) and on spec §4.5.4's
// guarantees: no module is ever recompiled once cached fresh ("no double
// work"), and the first stage to report an error stops the build
// ("fail-fast").
type Scheduler struct {
	channels []*Channel
	next     int
	bag      *diag.Bag
}

// NewScheduler wires a Scheduler to an already-running worker pool.
func NewScheduler(channels []*Channel) *Scheduler {
	return &Scheduler{channels: channels, bag: &diag.Bag{}}
}

// Bag returns the diagnostics accumulated across every stage run so far.
func (s *Scheduler) Bag() *diag.Bag { return s.bag }

func (s *Scheduler) dispatch(cmd Command) *Channel {
	ch := s.channels[s.next%len(s.channels)]
	s.next++
	ch.Send(RunMessage([]Command{cmd}))
	return ch
}

// RunProject compiles every module reachable from roots, in the order spec
// §4.5.1 fixes: per-file Lex/Parse/HIR, an InterHIR barrier, per-file MIR,
// an InterMIR barrier, then CodeGen. It returns false as soon as any stage
// reports an error (fail-fast), leaving later stages undispatched.
func (s *Scheduler) RunProject(roots map[string]string, intermediateDir, backend, outputPath string) bool {
	modules := map[string]ident.Span{}
	for modulePath := range roots {
		modules[modulePath] = ident.NoneSpan
	}

	if !s.runPerFileStage(roots, modules, intermediateDir, true, cache.StageHIR) {
		return false
	}
	if !s.runBarrier(CmdInterHir, modules, intermediateDir) {
		return false
	}

	mirInputs := make(map[string]string, len(modules))
	for path := range modules {
		mirInputs[path] = path
	}
	if !s.runPerFileStage(mirInputs, modules, intermediateDir, false, cache.StageMIR) {
		return false
	}
	if !s.runBarrier(CmdInterMir, modules, intermediateDir) {
		return false
	}

	return s.runCodeGen(modules, intermediateDir, backend, outputPath)
}

// runPerFileStage dispatches one PerFileIr command per input, discovering
// new modules as AddModule messages arrive and folding them into the same
// worklist (so a module found via an import is compiled exactly once,
// never twice, even if two other modules both import it).
func (s *Scheduler) runPerFileStage(inputs map[string]string, modules map[string]ident.Span, intermediateDir string, findModules bool, stopAfter cache.Stage) bool {
	pending := 0
	queued := map[string]bool{}
	for modulePath, inputPath := range inputs {
		queued[modulePath] = true
		s.dispatch(PerFileIrCommand(inputPath, modulePath, modules[modulePath], intermediateDir, findModules, stopAfter))
		pending++
	}

	ok := true
	for pending > 0 {
		sawMessage := false
		for _, ch := range s.channels {
			m, got := ch.TryRecv()
			if !got {
				continue
			}
			sawMessage = true
			switch {
			case m.IsAddModule():
				if !queued[m.ModulePath] {
					queued[m.ModulePath] = true
					modules[m.ModulePath] = m.ModuleSpan
					s.dispatch(PerFileIrCommand(m.ModulePath, m.ModulePath, m.ModuleSpan, intermediateDir, findModules, stopAfter))
					pending++
				}
			case m.IsIrComplete():
				s.record(m)
				pending--
				if len(m.Errors) > 0 {
					ok = false
				}
			case m.IsError():
				s.bag.Add(diag.New(diag.CodeModuleCompileFailed, diag.SeverityError, fmt.Sprintf("worker failed: %v", m.Err), ident.NoneSpan))
				ok = false
				pending--
			}
		}
		if !sawMessage {
			time.Sleep(time.Millisecond)
		}
	}
	return ok
}

func (s *Scheduler) runBarrier(kind CommandKind, modules map[string]ident.Span, intermediateDir string) bool {
	var cmd Command
	switch kind {
	case CmdInterHir:
		cmd = InterHirCommand(modules, intermediateDir)
	case CmdInterMir:
		cmd = InterMirCommand(modules, intermediateDir)
	default:
		panic("orchestrator: runBarrier called with a non-barrier command kind")
	}
	ch := s.dispatch(cmd)
	m := ch.Recv()
	if m.IsError() {
		s.bag.Add(diag.New(diag.CodeModuleCompileFailed, diag.SeverityError, fmt.Sprintf("barrier stage failed: %v", m.Err), ident.NoneSpan))
		return false
	}
	s.record(m)
	return len(m.Errors) == 0
}

func (s *Scheduler) runCodeGen(modules map[string]ident.Span, intermediateDir, backend, outputPath string) bool {
	ch := s.dispatch(CodeGenCommand(modules, intermediateDir, backend, outputPath))
	m := ch.Recv()
	if m.IsError() {
		s.bag.Add(diag.New(diag.CodeModuleCompileFailed, diag.SeverityError, fmt.Sprintf("codegen failed: %v", m.Err), ident.NoneSpan))
		return false
	}
	s.record(m)
	return len(m.Errors) == 0
}

func (s *Scheduler) record(m MessageToMain) {
	for _, r := range m.Errors {
		s.bag.Add(r)
	}
	for _, r := range m.Warnings {
		s.bag.Add(r)
	}
}

// Shutdown sends Kill to every worker and collects their final logs,
// bounded by Channel.Join's 500ms timeout per worker.
func (s *Scheduler) Shutdown() map[WorkerID][]LogEntry {
	out := make(map[WorkerID][]LogEntry, len(s.channels))
	for _, ch := range s.channels {
		out[ch.WorkerID] = ch.Join()
	}
	return out
}
