// Package orchestrator implements the worker pool and stage scheduler of
// spec §4.5: a fixed number of goroutines pull batches of Commands off a
// channel, run them through the compilation stages, and report completions
// back to the main goroutine. Ported from original_source/src/worker.rs,
// translating Rust threads + mpsc channels into Go goroutines + buffered
// channels.
package orchestrator

import (
	"time"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

// WorkerID names one worker goroutine, stable for its lifetime.
type WorkerID int

type msgToWorkerKind uint8

const (
	msgRun msgToWorkerKind = iota
	msgKill
)

// MessageToWorker is sent from the scheduler to a worker.
type MessageToWorker struct {
	k        msgToWorkerKind
	Commands []Command
}

func RunMessage(commands []Command) MessageToWorker {
	return MessageToWorker{k: msgRun, Commands: commands}
}

func KillMessage() MessageToWorker { return MessageToWorker{k: msgKill} }

func (m MessageToWorker) IsKill() bool { return m.k == msgKill }

type msgToMainKind uint8

const (
	msgAddModule msgToMainKind = iota
	msgIrComplete
	msgLog
	msgError
)

// MessageToMain is sent from a worker back to the scheduler.
type MessageToMain struct {
	k msgToMainKind

	// AddModule
	ModulePath string
	ModuleSpan ident.Span

	// IrComplete: ModulePathOpt is empty for inter-file (barrier) stages.
	ModulePathOpt string
	Stage         string
	Errors        []*diag.Report
	Warnings      []*diag.Report

	// Log
	WorkerID WorkerID
	Entries  []LogEntry

	// Error
	Err error
}

func AddModuleMessage(path string, span ident.Span) MessageToMain {
	return MessageToMain{k: msgAddModule, ModulePath: path, ModuleSpan: span}
}

func IrCompleteMessage(modulePath string, stage string, errs, warns []*diag.Report) MessageToMain {
	return MessageToMain{k: msgIrComplete, ModulePathOpt: modulePath, Stage: stage, Errors: errs, Warnings: warns}
}

func LogMessage(id WorkerID, entries []LogEntry) MessageToMain {
	return MessageToMain{k: msgLog, WorkerID: id, Entries: entries}
}

func ErrorMessage(err error) MessageToMain { return MessageToMain{k: msgError, Err: err} }

func (m MessageToMain) IsAddModule() bool  { return m.k == msgAddModule }
func (m MessageToMain) IsIrComplete() bool { return m.k == msgIrComplete }
func (m MessageToMain) IsLog() bool        { return m.k == msgLog }
func (m MessageToMain) IsError() bool      { return m.k == msgError }

// LogEntry records how long one command took on one worker, timestamped
// relative to the worker's birth — the supplemented `LogEntry{command,
// started_at, duration}` shape from original_source/src/worker.rs, feeding
// `--emit-irs` style diagnostics per spec §9's supplement.
type LogEntry struct {
	Command   SimpleCommand
	StartedAt time.Duration
	Duration  time.Duration
	HasError  bool
}

// Executor runs one Command to completion, performing whatever cache
// lookups, parsing, solving, and lowering that command's stage requires.
// Decoupling it from Worker lets the scheduler's tests swap in a fake
// executor instead of driving a real compilation pipeline.
type Executor interface {
	Execute(cmd Command, report func(MessageToMain)) error
}

// Channel is the main goroutine's handle to one worker: a pair of
// buffered Go channels plus the worker's id.
type Channel struct {
	WorkerID   WorkerID
	toWorker   chan MessageToWorker
	toMain     chan MessageToMain
	done       chan struct{}
}

func (c *Channel) Send(msg MessageToWorker) { c.toWorker <- msg }

// TryRecv returns the next message without blocking.
func (c *Channel) TryRecv() (MessageToMain, bool) {
	select {
	case m := <-c.toMain:
		return m, true
	default:
		return MessageToMain{}, false
	}
}

// Recv blocks until a message is available.
func (c *Channel) Recv() MessageToMain { return <-c.toMain }

// Join sends Kill and waits (up to 500ms) to collect the worker's final Log
// message before giving up, mirroring worker.rs's Channel::join: "If it
// cannot collect the logs (timeout = 500ms), it returns None."
func (c *Channel) Join() []LogEntry {
	c.Send(KillMessage())
	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case m := <-c.toMain:
			if m.IsLog() {
				<-c.done
				return m.Entries
			}
		case <-deadline:
			return nil
		case <-c.done:
			return nil
		}
	}
}

// Worker is the goroutine-local state a worker owns — a thin wrapper
// whose main purpose is logging, per worker.rs's doc comment.
type Worker struct {
	id       WorkerID
	bornAt   time.Time
	log      []LogEntry
	curr     SimpleCommand
	currAt   time.Duration
	currErr  bool
	hasCurr  bool
	executor Executor
}

// InitWorkersAndChannels spawns n worker goroutines, each running exec,
// and returns the main goroutine's Channel handle to each.
func InitWorkersAndChannels(n int, exec Executor) []*Channel {
	channels := make([]*Channel, n)
	for i := 0; i < n; i++ {
		channels[i] = initWorkerAndChannel(i, exec)
	}
	return channels
}

func initWorkerAndChannel(id int, exec Executor) *Channel {
	ch := &Channel{
		WorkerID: WorkerID(id),
		toWorker: make(chan MessageToWorker, 16),
		toMain:   make(chan MessageToMain, 256),
		done:     make(chan struct{}),
	}
	w := &Worker{id: WorkerID(id), bornAt: time.Now(), executor: exec}
	go w.loop(ch.toMain, ch.toWorker, ch.done)
	return ch
}

func (w *Worker) loop(toMain chan<- MessageToMain, toWorker <-chan MessageToWorker, done chan<- struct{}) {
	defer close(done)
	for msg := range toWorker {
		if msg.IsKill() {
			toMain <- LogMessage(w.id, w.drainLog())
			return
		}
		if err := w.runCommands(msg.Commands, toMain); err != nil {
			if w.hasCurr {
				w.markErrorLog()
				w.logCommandEnd()
			}
			toMain <- LogMessage(w.id, w.drainLog())
			toMain <- ErrorMessage(err)
			return
		}
	}
}

func (w *Worker) runCommands(commands []Command, toMain chan<- MessageToMain) error {
	for _, cmd := range commands {
		w.logCommandStart(cmd)
		err := w.executor.Execute(cmd, func(m MessageToMain) { toMain <- m })
		if err != nil {
			return err
		}
		w.logCommandEnd()
	}
	return nil
}

func (w *Worker) logCommandStart(cmd Command) {
	if w.hasCurr {
		panic("orchestrator: worker started a command while another was in flight")
	}
	w.curr = cmd.Simplify()
	w.currAt = time.Since(w.bornAt)
	w.currErr = false
	w.hasCurr = true
}

func (w *Worker) logCommandEnd() {
	w.log = append(w.log, LogEntry{
		Command:   w.curr,
		StartedAt: w.currAt,
		Duration:  time.Since(w.bornAt) - w.currAt,
		HasError:  w.currErr,
	})
	w.hasCurr = false
}

func (w *Worker) markErrorLog() { w.currErr = true }

func (w *Worker) drainLog() []LogEntry {
	out := w.log
	w.log = nil
	return out
}
