package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another process holds the directory lock.
var ErrLocked = errors.New("directory is locked by another clockdrift process")

// LockFileName is created inside locked directories.
const LockFileName = ".clockdrift.lock"

// DirLock is an advisory, process-exclusive lock on a directory.
type DirLock struct {
	path string
	lock *flock.Flock
}

// LockDir creates dir if needed and takes its lock without blocking.
func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &DirLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	return l.path
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *DirLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
