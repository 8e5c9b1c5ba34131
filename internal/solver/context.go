package solver

import "github.com/sodigy-lang/sodigy/internal/mirtype"

// errorContext tags why solveSupertype is being called, purely to make
// generated diagnostics more specific (spec §4.2.2: "a context tag").
// Grounded on the original source's ErrorContext enum (type_solver.rs).
type errorContext struct {
	kind     ctxKind
	typeVar  mirtype.Type
}

type ctxKind uint8

const (
	ctxNone ctxKind = iota
	ctxDeep
	ctxInferedAgain
)

func noContext() errorContext { return errorContext{kind: ctxNone} }
func deepContext() errorContext { return errorContext{kind: ctxDeep} }
func inferedAgainContext(v mirtype.Type) errorContext {
	return errorContext{kind: ctxInferedAgain, typeVar: v}
}
