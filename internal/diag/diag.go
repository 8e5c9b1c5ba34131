// Package diag provides the compiler's structured diagnostic taxonomy: a
// closed Code enum, a Report type that carries a message, spans, and
// structured data, JSON encoding for machine consumption, and colored human
// rendering for terminal output. Grounded on the teacher's internal/errors
// package (Report/ReportError/ToJSON, codes.go's phase-prefixed taxonomy).
package diag

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fatih/color"

	"github.com/sodigy-lang/sodigy/internal/ident"
)

// Code is a stable, closed diagnostic code. Unlike the teacher's
// string-typed codes, Code is a small int so switch exhaustiveness is
// checked and codes can't collide by typo.
type Code uint16

const (
	// Solver errors (solve_supertype, spec §4.2)
	CodeUnexpectedType Code = iota + 1000
	CodeUnexpectedPurity
	CodeCannotInferType
	CodePartiallyInferedType
	CodeInferedAgain
	CodePurityMismatch

	// Pattern / match compiler errors (spec §4.3)
	CodeNonExhaustiveMatch
	CodeUnreachableArm

	// Resolver errors (spec §4.4)
	CodeUnresolvedAlias
	CodeCyclicAlias
	CodeUnknownAssocItem
	CodeMissingLangItem

	// Orchestrator / cache errors (spec §4.5)
	CodeModuleCompileFailed
	CodeCacheCorrupt

	// Config errors
	CodeInvalidManifest
)

var codeNames = map[Code]string{
	CodeUnexpectedType:       "SLV001",
	CodeUnexpectedPurity:     "SLV002",
	CodeCannotInferType:      "SLV003",
	CodePartiallyInferedType: "SLV004",
	CodeInferedAgain:         "SLV005",
	CodePurityMismatch:       "SLV006",
	CodeNonExhaustiveMatch:   "MAT001",
	CodeUnreachableArm:       "MAT002",
	CodeUnresolvedAlias:      "RES001",
	CodeCyclicAlias:          "RES002",
	CodeUnknownAssocItem:     "RES003",
	CodeMissingLangItem:      "RES004",
	CodeModuleCompileFailed:  "ORC001",
	CodeCacheCorrupt:         "CAC001",
	CodeInvalidManifest:      "CFG001",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNK%d", uint16(c))
}

// Severity classifies a Report as blocking compilation or merely advisory.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Report is the canonical structured diagnostic, analogous to the teacher's
// errors.Report: a schema tag, a stable code, a human message, the primary
// span, secondary spans (e.g. "dominated by this arm"), and free-form
// structured data for machine consumers.
type Report struct {
	Schema      string         `json:"schema"`
	Code        Code           `json:"code"`
	Severity    Severity       `json:"severity"`
	Message     string         `json:"message"`
	Span        ident.Span     `json:"span"`
	Secondary   []ident.Span   `json:"secondary,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

const schemaV1 = "sodigy.diag/v1"

func New(code Code, severity Severity, message string, span ident.Span) *Report {
	return &Report{Schema: schemaV1, Code: code, Severity: severity, Message: message, Span: span}
}

// WithSecondary attaches secondary spans (e.g. arms that dominate an
// unreachable arm) and returns the report for chaining.
func (r *Report) WithSecondary(spans ...ident.Span) *Report {
	r.Secondary = append(r.Secondary, spans...)
	return r
}

// WithData attaches a structured key/value pair.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

func (r *Report) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// ToJSON renders the report deterministically (sorted map keys come for
// free from encoding/json on map[string]any since Go 1.12).
func (r *Report) ToJSON(pretty bool) (string, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Bag accumulates errors and warnings across a solving pass, mirroring
// TypeSolver's `errors: Vec<TypeError>, warnings: Vec<TypeWarning>` — the
// solver never halts on a single failure (spec §4.2.5).
type Bag struct {
	Reports []*Report
}

func (b *Bag) Add(r *Report) { b.Reports = append(b.Reports, r) }

func (b *Bag) HasErrors() bool {
	for _, r := range b.Reports {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (b *Bag) Errors() []*Report    { return b.filter(SeverityError) }
func (b *Bag) Warnings() []*Report  { return b.filter(SeverityWarning) }

func (b *Bag) filter(sev Severity) []*Report {
	var out []*Report
	for _, r := range b.Reports {
		if r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}

// Sorted returns reports ordered by span for deterministic CLI output.
func (b *Bag) Sorted() []*Report {
	out := make([]*Report, len(b.Reports))
	copy(out, b.Reports)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.String() < out[j].Span.String()
	})
	return out
}

// RenderHuman formats a report for terminal output, colorizing the
// severity tag the way cmd/ailang's CLI colorizes status lines with
// fatih/color.
func RenderHuman(r *Report) string {
	tag := color.New(color.FgRed, color.Bold).Sprint("error")
	if r.Severity == SeverityWarning {
		tag = color.New(color.FgYellow, color.Bold).Sprint("warning")
	}
	loc := color.New(color.FgCyan).Sprint(r.Span.String())
	return fmt.Sprintf("%s[%s] %s: %s", tag, r.Code, loc, r.Message)
}
