package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	lockRetryInterval = 10 * time.Millisecond
	// a lock file older than this was left by a writer that died
	lockStaleAfter = 30 * time.Second
)

// FileSource keeps documents as files under a directory.
// Conditional writes hold a <key>.lock file created with O_EXCL, so writers in other
// processes sharing the directory are serialised too. The file is replaced via a
// temp file and rename.
type FileSource struct {
	dir string
	mu  sync.Mutex
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (f *FileSource) Get(ctx context.Context, key string) (Document, error) {
	body, err := os.ReadFile(filepath.Join(f.dir, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return Document{}, err
	}
	return Document{Body: body, Version: contentVersion(body)}, nil
}

func (f *FileSource) PutIfMatch(ctx context.Context, key string, body []byte, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.dir, key)
	unlock, err := acquireLock(ctx, path+".lock")
	if err != nil {
		return err
	}
	defer unlock()

	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if contentVersion(current) != version {
		return ErrVersionConflict
	}

	tmp, err := os.CreateTemp(f.dir, filepath.Base(key)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func acquireLock(ctx context.Context, lockPath string) (func(), error) {
	for {
		lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			lock.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", filepath.Base(lockPath), ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

func contentVersion(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
