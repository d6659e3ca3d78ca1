package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	verrors "github.com/Aman-CERP/versio/internal/errors"
)

// FileLock serialises index builds across processes. It is an advisory
// lock on <db>.lock next to the database.
type FileLock struct {
	fl *flock.Flock
}

// NewFileLock returns an unlocked lock for the database at dbPath.
func NewFileLock(dbPath string) *FileLock {
	return &FileLock{fl: flock.New(dbPath + ".lock")}
}

// Lock blocks until the lock is held, retrying every retryDelay, or fails
// with ERR_208 once ctx is done.
func (l *FileLock) Lock(ctx context.Context, retryDelay time.Duration) error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	ok, err := l.fl.TryLockContext(ctx, retryDelay)
	if err == nil && ok {
		return nil
	}
	return verrors.New(verrors.ErrCodeIndexLocked,
		fmt.Sprintf("index is locked by another process (%s)", l.Path()), err).
		WithSuggestion("Wait for the other 'versio index' run to finish")
}

// TryLock takes the lock if it is free and reports whether it did.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", l.Path(), err)
	}
	return ok, nil
}

// Unlock releases the lock. It is a no-op when the lock is not held.
func (l *FileLock) Unlock() error {
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.Path(), err)
	}
	return nil
}

// Path is the lock file path.
func (l *FileLock) Path() string { return l.fl.Path() }

// IsLocked reports whether this process holds the lock through l.
func (l *FileLock) IsLocked() bool { return l.fl.Locked() }

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	return nil
}
