// Package ident provides the span and interned-string primitives that every
// IR entity in the compiler is keyed by.
package ident

import (
	"fmt"
	"sync"
)

// FileID identifies a source file by its index in the orchestrator's file table.
type FileID int

// PolyKind classifies a span synthesized during monomorphization.
type PolyKind uint8

const (
	PolyKindCallSite PolyKind = iota
	PolyKindGenericDef
)

func (k PolyKind) String() string {
	switch k {
	case PolyKindCallSite:
		return "call-site"
	case PolyKindGenericDef:
		return "generic-def"
	default:
		return "unknown"
	}
}

// DeriveKind classifies a span derived from a parent span.
type DeriveKind uint8

const (
	DeriveKindReturn DeriveKind = iota
	DeriveKindPatternBind
	DeriveKindDesugar
)

func (k DeriveKind) String() string {
	switch k {
	case DeriveKindReturn:
		return "return"
	case DeriveKindPatternBind:
		return "pattern-bind"
	case DeriveKindDesugar:
		return "desugar"
	default:
		return "unknown"
	}
}

// spanKind discriminates the Span sum type. Span is a cheap-copy value type;
// every entity in the IR carries at least one.
type spanKind uint8

const (
	spanNone spanKind = iota
	spanFile
	spanPoly
	spanDerive
)

// Span is an opaque value locating a syntactic construct, and the universal
// key for identifying declarations, uses, and type variables — which means
// it must be a plain comparable value (no pointers) so it can be used as a
// map key (directly, or nested inside mirtype.Type). A Derive span's parent
// would otherwise require a recursive/pointer field; instead the parent is
// interned into a package-level table and referenced by index, the same
// trick internal/ident.Table uses for long strings. Two Derive spans with
// structurally equal parents therefore always compare equal.
type Span struct {
	kind spanKind

	// File
	File       FileID
	Start, End int

	// Poly
	PolyName InternedString
	PolyKind PolyKind

	// Derive
	parentIdx  int32 // index into the parent table; -1 if kind != spanDerive
	DeriveKind DeriveKind
}

// NoneSpan is the empty span.
var NoneSpan = Span{kind: spanNone, parentIdx: -1}

// NewFileSpan builds a File span.
func NewFileSpan(file FileID, start, end int) Span {
	return Span{kind: spanFile, File: file, Start: start, End: end, parentIdx: -1}
}

// NewPolySpan builds a span synthesized for monomorphization.
func NewPolySpan(name InternedString, kind PolyKind) Span {
	return Span{kind: spanPoly, PolyName: name, PolyKind: kind, parentIdx: -1}
}

var (
	parentMu    sync.Mutex
	parentTable []Span
	parentIndex = map[Span]int32{}
)

func internParent(parent Span) int32 {
	parentMu.Lock()
	defer parentMu.Unlock()
	if idx, ok := parentIndex[parent]; ok {
		return idx
	}
	idx := int32(len(parentTable))
	parentTable = append(parentTable, parent)
	parentIndex[parent] = idx
	return idx
}

// NewDeriveSpan builds a span derived from a parent.
func NewDeriveSpan(parent Span, kind DeriveKind) Span {
	return Span{kind: spanDerive, parentIdx: internParent(parent), DeriveKind: kind}
}

// IsNone reports whether the span carries no location information.
func (s Span) IsNone() bool { return s.kind == spanNone }

// Parent returns the parent span of a Derive span, or NoneSpan otherwise.
func (s Span) Parent() Span {
	if s.kind != spanDerive {
		return NoneSpan
	}
	parentMu.Lock()
	defer parentMu.Unlock()
	if int(s.parentIdx) < 0 || int(s.parentIdx) >= len(parentTable) {
		return NoneSpan
	}
	return parentTable[s.parentIdx]
}

// Equals reports structural equality, which is what every map-key use in
// the solver relies on: two Vars are equal iff their spans are equal. Since
// Span is itself a plain comparable struct, Equals is just ==; it is kept as
// a method for symmetry with mirtype.Type.Equals and for documentation.
func (s Span) Equals(o Span) bool { return s == o }

func (s Span) String() string {
	switch s.kind {
	case spanNone:
		return "<none>"
	case spanFile:
		return fmt.Sprintf("file(%d)[%d:%d]", s.File, s.Start, s.End)
	case spanPoly:
		return fmt.Sprintf("poly(%s,%s)", s.PolyName, s.PolyKind)
	case spanDerive:
		return fmt.Sprintf("derive(%s,%s)", s.Parent(), s.DeriveKind)
	default:
		return "<invalid-span>"
	}
}
