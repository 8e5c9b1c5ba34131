package resolver

import (
	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

// Alias is one `use a as b` / re-export binding: the local name and the
// dotted path it refers to, which may itself name another alias.
type Alias struct {
	Span   ident.Span
	Target []string
}

// AliasTable holds every alias declared across the modules in one barrier
// (spec §4.4: "alias resolution (bounded-depth fixed point to detect
// cycles)"), keyed by the alias's own dotted path.
type AliasTable struct {
	aliases map[string]Alias
	// resolved caches a path's terminal (non-alias) path once resolved, so
	// a fixed point that touches the same alias from multiple uses doesn't
	// re-walk the chain each time.
	resolved map[string][]string
}

func NewAliasTable() *AliasTable {
	return &AliasTable{aliases: map[string]Alias{}, resolved: map[string][]string{}}
}

func (t *AliasTable) Declare(path string, a Alias) {
	t.aliases[path] = a
}

// maxAliasDepth bounds the fixed point (spec §4.4's "bounded-depth"); a
// chain this long is always a cycle or a malformed import graph, not a
// legitimate re-export depth.
const maxAliasDepth = 64

// Resolve follows an alias chain starting at path to its terminal dotted
// path, reporting CodeCyclicAlias if the chain revisits a path within the
// depth bound. Grounded on the teacher's link.TopoSortFromRoot's
// inPath-set DFS cycle detector, adapted from a whole-graph topological
// sort to a single bounded-depth chain walk (spec §4.4 doesn't need a full
// module order here, just termination).
func (t *AliasTable) Resolve(path string, bag *diag.Bag, errSpan ident.Span) []string {
	if cached, ok := t.resolved[path]; ok {
		return cached
	}

	inChain := map[string]bool{}
	chain := []string{path}
	cur := path
	for depth := 0; depth < maxAliasDepth; depth++ {
		a, ok := t.aliases[cur]
		if !ok {
			t.resolved[path] = []string{cur}
			return t.resolved[path]
		}
		target := joinPath(a.Target)
		if inChain[target] {
			chain = append(chain, target)
			bag.Add(diag.New(diag.CodeCyclicAlias, diag.SeverityError,
				"cyclic alias: "+joinPath(chain), a.Span))
			t.resolved[path] = []string{path}
			return t.resolved[path]
		}
		inChain[cur] = true
		cur = target
		chain = append(chain, cur)
	}
	bag.Add(diag.New(diag.CodeCyclicAlias, diag.SeverityError,
		"alias recursion limit exceeded resolving "+path, errSpan))
	t.resolved[path] = []string{path}
	return t.resolved[path]
}

func joinPath(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// reportUnresolved records a use of a path with no declaration at all
// (neither a direct def nor an alias), spec's "undefined name"/
// CodeUnresolvedAlias.
func reportUnresolved(bag *diag.Bag, path string, span ident.Span) {
	bag.Add(diag.New(diag.CodeUnresolvedAlias, diag.SeverityError,
		"unresolved name: "+path, span))
}
