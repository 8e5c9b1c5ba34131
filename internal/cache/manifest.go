package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// SchemaVersion tags the on-disk sidecar manifest format, the same
// versioning discipline the teacher's internal/manifest.SchemaVersion uses.
const SchemaVersion = "sodigy.cache/v1"

// Entry records one cached artifact's provenance: when it was written, and
// (for per-file artifacts) the source file's modification time, so a stale
// mtime can trigger recompilation even when the content hash wasn't
// rechecked (spec §6: "Decoding validates that the file's modification time
// matches the metadata stamped at encode time; a mismatch triggers
// recompilation").
type Entry struct {
	Key        Key       `json:"key"`
	SourcePath string    `json:"source_path,omitempty"`
	SourceMtime time.Time `json:"source_mtime,omitempty"`
	WrittenAt  time.Time `json:"written_at"`
}

// Manifest is the JSON sidecar recording every artifact currently on disk
// under one intermediate directory, mirroring internal/manifest.Manifest's
// Schema/SchemaVersion/entries/Load/Save shape.
type Manifest struct {
	mu      sync.Mutex
	Schema  string           `json:"schema"`
	Entries map[string]Entry `json:"entries"` // keyed by Key.Path()
}

func NewManifest() *Manifest {
	return &Manifest{Schema: SchemaVersion, Entries: map[string]Entry{}}
}

// Load reads the sidecar manifest from dir/irs/manifest.json; a missing
// file is not an error (a fresh intermediate directory starts empty).
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "irs", "manifest.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cache: parsing manifest: %w", err)
	}
	if m.Entries == nil {
		m.Entries = map[string]Entry{}
	}
	return &m, nil
}

// Save atomically writes the manifest back to dir/irs/manifest.json.
func (m *Manifest) Save(dir string) error {
	m.mu.Lock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("cache: encoding manifest: %w", err)
	}
	return AtomicWrite(filepath.Join(dir, "irs", "manifest.json"), data)
}

// Record adds or updates an entry, keyed by its artifact path.
func (m *Manifest) Record(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[e.Key.Path()] = e
}

// Lookup returns the entry for key, if one is recorded.
func (m *Manifest) Lookup(key Key) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Entries[key.Path()]
	return e, ok
}

// Fresh reports whether the cached entry for key is still valid for a
// source file with the given modification time — spec §6's mtime
// validation. Barrier entries (no SourcePath) are always considered fresh
// once present; the orchestrator invalidates them explicitly when any
// contributing module changes (spec §4.5.4's "no double work" guarantee is
// enforced by the scheduler, not by this check).
func (m *Manifest) Fresh(key Key, sourceMtime time.Time) bool {
	e, ok := m.Lookup(key)
	if !ok {
		return false
	}
	if key.IsBarrier() {
		return true
	}
	return e.SourceMtime.Equal(sourceMtime)
}

// Paths returns every recorded artifact path, sorted, for deterministic
// `--emit-irs` listings and tests.
func (m *Manifest) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Entries))
	for p := range m.Entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
