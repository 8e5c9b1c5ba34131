package ident

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// InternedString is a handle into the process-wide string table. Short
// strings pack inline (no table lookup needed); longer strings resolve via
// the backing table. Equality on the handle implies equality on content.
type InternedString struct {
	// inline holds the string itself when len(inline) <= inlineCap, so that
	// short identifiers (the overwhelming majority) never touch the table.
	inline string
	// idx is the table index for strings too long to inline; -1 means "use
	// inline" (the zero value of InternedString is the empty string).
	idx int
}

const inlineCap = 23

var emptyInterned = InternedString{idx: -1}

func (s InternedString) String() string {
	if s.idx < 0 {
		return s.inline
	}
	return globalTable.lookup(s.idx)
}

func (s InternedString) IsEmpty() bool {
	return s.idx < 0 && s.inline == ""
}

// Table is a process-wide string table. Long strings are normalized to NFC
// (mirroring the lexer's own normalization boundary) and deduplicated by
// content so that equality on InternedString implies equality on content.
type Table struct {
	mu      sync.RWMutex
	strings []string
	byValue map[string]int
}

func NewTable() *Table {
	return &Table{byValue: make(map[string]int)}
}

var globalTable = NewTable()

// GlobalTable returns the process-wide interning table, used by
// InternedString.String to resolve long strings.
func GlobalTable() *Table { return globalTable }

// Intern normalizes and interns s, returning a stable handle.
func (t *Table) Intern(s string) InternedString {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if len(s) <= inlineCap {
		return InternedString{inline: s, idx: -1}
	}

	t.mu.RLock()
	if idx, ok := t.byValue[s]; ok {
		t.mu.RUnlock()
		return InternedString{idx: idx}
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if idx, ok := t.byValue[s]; ok {
		return InternedString{idx: idx}
	}
	idx := len(t.strings)
	t.strings = append(t.strings, s)
	t.byValue[s] = idx
	return InternedString{idx: idx}
}

func (t *Table) lookup(idx int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx < 0 || idx >= len(t.strings) {
		return ""
	}
	return t.strings[idx]
}

// Snapshot returns every interned long string in index order, for
// persisting the span-string map (see internal/cache).
func (t *Table) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.strings))
	copy(out, t.strings)
	return out
}

// Intern is a convenience wrapper around the process-wide table.
func Intern(s string) InternedString { return globalTable.Intern(s) }
