package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash([]byte("fn main() = 1;"))
	b := ContentHash([]byte("fn main() = 1;"))
	if a != b {
		t.Fatalf("expected equal hashes, got %q and %q", a, b)
	}
	c := ContentHash([]byte("fn main() = 2;"))
	if a == c {
		t.Fatal("expected different source to hash differently")
	}
}

func TestKeyPath(t *testing.T) {
	fileKey := Key{Stage: StageHIR, ContentHash: "abc123"}
	if got, want := fileKey.Path(), "irs/hir/abc123.bin"; got != want {
		t.Errorf("file key path = %q, want %q", got, want)
	}
	if fileKey.IsBarrier() {
		t.Error("a key with a content hash must not be a barrier")
	}

	barrierKey := Key{Stage: StageInterHIR}
	if got, want := barrierKey.Path(), "irs/inter-hir.bin"; got != want {
		t.Errorf("barrier key path = %q, want %q", got, want)
	}
	if !barrierKey.IsBarrier() {
		t.Error("a key with no content hash must be a barrier")
	}
}

func TestManifestFreshness(t *testing.T) {
	m := NewManifest()
	key := Key{Stage: StageHIR, ContentHash: "deadbeef"}
	mtime := time.Now()

	if m.Fresh(key, mtime) {
		t.Fatal("an unrecorded entry must never be fresh")
	}

	m.Record(Entry{Key: key, SourcePath: "a.sdg", SourceMtime: mtime, WrittenAt: mtime})
	if !m.Fresh(key, mtime) {
		t.Fatal("an entry recorded with the same mtime must be fresh")
	}
	if m.Fresh(key, mtime.Add(time.Second)) {
		t.Fatal("a changed mtime must invalidate the cached entry")
	}
}

func TestManifestBarrierAlwaysFreshOncePresent(t *testing.T) {
	m := NewManifest()
	key := Key{Stage: StageInterMIR}
	m.Record(Entry{Key: key, WrittenAt: time.Now()})
	if !m.Fresh(key, time.Time{}) {
		t.Fatal("a recorded barrier entry must be fresh regardless of mtime")
	}
}

func TestManifestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := NewManifest()
	key := Key{Stage: StageHIR, ContentHash: "cafef00d"}
	mtime := time.Now().Truncate(time.Second)
	m.Record(Entry{Key: key, SourcePath: "b.sdg", SourceMtime: mtime, WrittenAt: mtime})

	if err := m.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entry, ok := loaded.Lookup(key)
	if !ok {
		t.Fatal("expected the round-tripped manifest to contain the recorded entry")
	}
	if !entry.SourceMtime.Equal(mtime) {
		t.Errorf("source mtime = %v, want %v", entry.SourceMtime, mtime)
	}
}

func TestLoadMissingManifestStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Entries) != 0 {
		t.Fatalf("expected an empty manifest, got %d entries", len(m.Entries))
	}
}

func TestAtomicWriteCreatesFileAndNoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irs", "hir", "somehash.bin")

	if err := AtomicWrite(path, []byte("payload")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("file contents = %q, want %q", data, "payload")
	}

	entries, err := os.ReadDir(filepath.Join(dir, "irs", "hir"))
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly the final file on disk, found %d entries", len(entries))
	}
}

func TestAtomicWriteOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	if err := AtomicWrite(path, []byte("first")); err != nil {
		t.Fatalf("first AtomicWrite: %v", err)
	}
	if err := AtomicWrite(path, []byte("second")); err != nil {
		t.Fatalf("second AtomicWrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("file contents = %q, want %q", data, "second")
	}
}
