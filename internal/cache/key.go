// Package cache implements the content-addressed IR cache of spec §4.5.2:
// per-module artifacts keyed by (stage, content-hash-of-source), barrier
// artifacts keyed by stage alone, a JSON sidecar manifest recording what's
// on disk, and an atomic-write helper for both. Grounded on the teacher's
// internal/sid (sha256 content hashing) and internal/manifest (schema-
// versioned JSON sidecar, Load/Save shape).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Stage names one point in the pipeline a module's IR can be cached at
// (spec §4.5.1's linear stage order).
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageHIR     Stage = "hir"
	StageInterHIR Stage = "inter-hir"
	StageMIR     Stage = "mir"
	StageInterMIR Stage = "inter-mir"
	StagePostMIR Stage = "post-mir"
	StageOptimize Stage = "optimize"
	StageBytecode Stage = "bytecode"
	StageCodeGen Stage = "codegen"
)

// ContentHash returns the hex-encoded sha256 digest of src, the cache key
// component spec §4.5.2 calls "content-hash-of-source-file". Ported from
// internal/sid.NewSID's hashing step, narrowed to hashing raw file bytes
// rather than an AST node's structural fields (a source file has no node
// kind/child path to fold in).
func ContentHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Key identifies one cached artifact: a per-file artifact carries both
// Stage and ContentHash; a barrier artifact (InterHIR/InterMIR) carries only
// Stage, since it depends on every module rather than one file's content
// (spec §4.5.2: "Barrier sessions are cached by stage name alone").
type Key struct {
	Stage       Stage
	ContentHash string // empty for barrier stages
}

func (k Key) IsBarrier() bool { return k.ContentHash == "" }

// Path returns the key's location under the intermediate directory's irs/
// subtree, matching spec §6's layout: "irs/<stage>/<content-hash>.bin" for
// per-file artifacts, "irs/<stage>.bin" for barriers.
func (k Key) Path() string {
	if k.IsBarrier() {
		return "irs/" + string(k.Stage) + ".bin"
	}
	return "irs/" + string(k.Stage) + "/" + k.ContentHash + ".bin"
}
