package cache

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to path by first writing a temp file named with a
// pseudorandom suffix in the same directory, then renaming it into place —
// spec §5's "Temporary files for atomic writes are named with a
// pseudorandom suffix; on write failure, the temp file is unlinked." Uses
// the destination's own directory (not os.TempDir/$TMPDIR) so the rename is
// guaranteed to be on the same filesystem and therefore atomic.
func AtomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: creating %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+randomSuffix())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("cache: creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("cache: writing temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("cache: closing temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: renaming into place: %w", err)
	}
	return nil
}

// randomSuffix generates the pseudorandom suffix spec §5 requires for
// temp-file names, so concurrent workers writing artifacts under the same
// stage directory never collide on the same temp path.
func randomSuffix() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform RNG is broken; fall back
		// to the process ID so the write can still proceed.
		return fmt.Sprintf("pid%d", os.Getpid())
	}
	return hex.EncodeToString(b[:])
}

// TempDir returns the directory atomic writes should stage their temp files
// in when no destination directory is implied — honoring $TMPDIR per spec
// §6's "Environment variables: TMPDIR (respected for atomic-write temp
// files)". AtomicWrite itself colocates temp files with their destination
// for rename atomicity; TempDir exists for callers (e.g. the orchestrator's
// scratch space) that genuinely want a system temp directory.
func TempDir() string {
	if dir := os.Getenv("TMPDIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}
