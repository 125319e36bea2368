package library

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// maxCollisionSuffix bounds the " (n)" rename attempts before a
// collision is declared unresolvable.
const maxCollisionSuffix = 100

// MoveCollisionUnresolvableError reports a destination where every
// suffixed candidate already exists with different content.
type MoveCollisionUnresolvableError struct {
	Dest string
}

func (e *MoveCollisionUnresolvableError) Error() string {
	return fmt.Sprintf("cannot place %s: all collision suffixes taken", e.Dest)
}

// MoveResult describes where a file ended up.
type MoveResult struct {
	Path         string
	Deduplicated bool
}

// Mover places finished files into the library. Staged files are moved;
// pass-through sources are copied, never touched. A per-directory lock
// serializes the exists-check-then-rename window between workers.
type Mover struct {
	mu   sync.Mutex
	dirs map[string]*sync.Mutex
}

func NewMover() *Mover {
	return &Mover{dirs: make(map[string]*sync.Mutex)}
}

func (m *Mover) dirLock(dir string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.dirs[dir]
	if !ok {
		lock = &sync.Mutex{}
		m.dirs[dir] = lock
	}
	return lock
}

// MoveStaged moves a staging file to its destination. The staging file is
// consumed on success and on dedup.
func (m *Mover) MoveStaged(stagedPath string, dest Destination) (MoveResult, error) {
	result, err := m.place(stagedPath, dest, true)
	if err != nil {
		return MoveResult{}, err
	}
	if result.Deduplicated {
		_ = os.Remove(stagedPath)
	}
	return result, nil
}

// CopyIn copies a pass-through source into the library, leaving the
// source untouched.
func (m *Mover) CopyIn(sourcePath string, dest Destination) (MoveResult, error) {
	return m.place(sourcePath, dest, false)
}

func (m *Mover) place(sourcePath string, dest Destination, consumeSource bool) (MoveResult, error) {
	if err := os.MkdirAll(dest.Dir, 0o755); err != nil {
		return MoveResult{}, fmt.Errorf("create destination dir: %w", err)
	}

	lock := m.dirLock(dest.Dir)
	lock.Lock()
	defer lock.Unlock()

	target, dedup, err := resolveCollision(sourcePath, dest)
	if err != nil {
		return MoveResult{}, err
	}
	if dedup {
		return MoveResult{Path: target, Deduplicated: true}, nil
	}

	if consumeSource {
		if err := renameOrCopy(sourcePath, target, dest.Dir); err != nil {
			return MoveResult{}, err
		}
		return MoveResult{Path: target}, nil
	}

	if err := copyAtomic(sourcePath, target, dest.Dir); err != nil {
		return MoveResult{}, err
	}
	return MoveResult{Path: target}, nil
}

// resolveCollision walks dest, "name (2).ext", "name (3).ext"... until it
// finds a free slot or a byte-identical existing file.
func resolveCollision(sourcePath string, dest Destination) (target string, dedup bool, err error) {
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return "", false, fmt.Errorf("stat source %s: %w", sourcePath, err)
	}

	sourceDigest := ""
	ext := filepath.Ext(dest.Filename)
	stem := strings.TrimSuffix(dest.Filename, ext)

	for n := 1; n <= maxCollisionSuffix; n++ {
		name := dest.Filename
		if n > 1 {
			name = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		candidate := filepath.Join(dest.Dir, name)

		info, statErr := os.Stat(candidate)
		if errors.Is(statErr, os.ErrNotExist) {
			return candidate, false, nil
		}
		if statErr != nil {
			return "", false, fmt.Errorf("stat destination %s: %w", candidate, statErr)
		}

		if info.Size() != sourceInfo.Size() {
			continue
		}
		if sourceDigest == "" {
			sourceDigest, err = fileDigest(sourcePath)
			if err != nil {
				return "", false, err
			}
		}
		candidateDigest, err := fileDigest(candidate)
		if err != nil {
			return "", false, err
		}
		if candidateDigest == sourceDigest {
			return candidate, true, nil
		}
	}

	return "", false, &MoveCollisionUnresolvableError{Dest: dest.Path()}
}

// renameOrCopy renames within a filesystem and falls back to an atomic
// copy when staging and library live on different devices.
func renameOrCopy(sourcePath, target, dir string) error {
	if err := os.Rename(sourcePath, target); err == nil {
		return nil
	}
	if err := copyAtomic(sourcePath, target, dir); err != nil {
		return err
	}
	return os.Remove(sourcePath)
}

// copyAtomic copies through a temp file in the destination directory so
// the final name only ever appears fully written.
func copyAtomic(sourcePath, target, dir string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source %s: %w", sourcePath, err)
	}
	defer src.Close()

	temp := filepath.Join(dir, ".mconv-"+uuid.NewString())
	dst, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp %s: %w", temp, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(temp)
		return fmt.Errorf("copy to %s: %w", temp, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("close temp %s: %w", temp, err)
	}

	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for digest: %w", path, err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
