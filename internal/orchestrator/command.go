package orchestrator

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/cache"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

// CommandKind discriminates the four things a worker can be asked to run,
// ported from original_source/src/command.rs's Command enum.
type CommandKind uint8

const (
	CmdPerFileIr CommandKind = iota
	CmdInterHir
	CmdInterMir
	CmdCodeGen
)

func (k CommandKind) String() string {
	switch k {
	case CmdPerFileIr:
		return "PerFileIr"
	case CmdInterHir:
		return "InterHir"
	case CmdInterMir:
		return "InterMir"
	case CmdCodeGen:
		return "CodeGen"
	default:
		return "Unknown"
	}
}

// Command is a unit of work handed to a worker. Only the fields relevant to
// its Kind are populated, mirroring the Rust enum's per-variant payloads —
// Go has no tagged union, so this is a flat struct instead (same approach
// mir.Expr/mir.Pattern use for their own sum types).
type Command struct {
	k CommandKind

	// PerFileIr
	InputPath       string
	ModulePath      string
	ModuleSpan      ident.Span
	IntermediateDir string
	FindModules     bool
	StopAfter       cache.Stage

	// InterHir / InterMir / CodeGen: the full module set discovered so far.
	Modules map[string]ident.Span

	// CodeGen
	Backend    string
	OutputPath string
}

func (c Command) Kind() CommandKind { return c.k }

func PerFileIrCommand(inputPath, modulePath string, moduleSpan ident.Span, intermediateDir string, findModules bool, stopAfter cache.Stage) Command {
	return Command{
		k:               CmdPerFileIr,
		InputPath:       inputPath,
		ModulePath:      modulePath,
		ModuleSpan:      moduleSpan,
		IntermediateDir: intermediateDir,
		FindModules:     findModules,
		StopAfter:       stopAfter,
	}
}

func InterHirCommand(modules map[string]ident.Span, intermediateDir string) Command {
	return Command{k: CmdInterHir, Modules: modules, IntermediateDir: intermediateDir}
}

func InterMirCommand(modules map[string]ident.Span, intermediateDir string) Command {
	return Command{k: CmdInterMir, Modules: modules, IntermediateDir: intermediateDir}
}

func CodeGenCommand(modules map[string]ident.Span, intermediateDir, backend, outputPath string) Command {
	return Command{k: CmdCodeGen, Modules: modules, IntermediateDir: intermediateDir, Backend: backend, OutputPath: outputPath}
}

// SimpleCommand is a lightweight, loggable summary of a Command — the
// worker.rs original keeps LogEntry away from the heavyweight Vec fields a
// full Command can carry (modules maps, emit-ir option lists).
type SimpleCommand string

// Simplify produces the SimpleCommand recorded in a worker's LogEntry.
func (c Command) Simplify() SimpleCommand {
	switch c.k {
	case CmdPerFileIr:
		return SimpleCommand(fmt.Sprintf("PerFileIr(%s, stop_after=%s)", c.ModulePath, c.StopAfter))
	case CmdInterHir:
		return SimpleCommand(fmt.Sprintf("InterHir(%d modules)", len(c.Modules)))
	case CmdInterMir:
		return SimpleCommand(fmt.Sprintf("InterMir(%d modules)", len(c.Modules)))
	case CmdCodeGen:
		return SimpleCommand(fmt.Sprintf("CodeGen(%d modules, backend=%s)", len(c.Modules), c.Backend))
	default:
		return SimpleCommand("Unknown")
	}
}
