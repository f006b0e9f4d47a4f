// Package fileio reads session files and writes exports atomically,
// classifying failures into a small set of sentinel errors.
package fileio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lotas/tabsalvage/internal/applog"
)

var (
	ErrNotFound      = errors.New("file not found")
	ErrAlreadyExists = errors.New("file already exists")
	ErrMissingParent = errors.New("parent folder does not exist")
	ErrPermission    = errors.New("permission denied")
	ErrIO            = errors.New("i/o error")
)

// WriteOptions control how an existing target or a missing parent folder
// is treated.
type WriteOptions struct {
	Overwrite    bool
	CreateFolder bool
}

// Error is a classified file failure. Kind is one of the sentinel errors.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	if e.Err == nil {
		return msg
	}
	cause := e.Err
	var pe *fs.PathError
	if errors.As(cause, &pe) {
		cause = pe.Err
	}
	return msg + " (" + cause.Error() + ")"
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind error) error {
	return &Error{Op: op, Path: path, Kind: kind}
}

// classify wraps err with the matching sentinel.
func classify(op, path string, err error) error {
	kind := ErrIO
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrExist):
		kind = ErrAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermission
	}
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// ReadFile reads a whole file.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify("read", path, err)
	}
	return data, nil
}

var (
	locksMu   sync.Mutex
	pathLocks = map[string]*pathLock{}
)

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// lockPath serializes writers of one target inside this process.
func lockPath(path string) func() {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	locksMu.Lock()
	l, ok := pathLocks[key]
	if !ok {
		l = &pathLock{}
		pathLocks[key] = l
	}
	l.refs++
	locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(pathLocks, key)
		}
		locksMu.Unlock()
	}
}

// WriteAtomic writes data to path through a temp file in the same folder.
// The destination either keeps its old contents or receives all of data.
func WriteAtomic(path string, data []byte, opts WriteOptions) (err error) {
	unlock := lockPath(path)
	defer unlock()

	info, statErr := os.Stat(path)
	switch {
	case statErr == nil && info.IsDir():
		return &Error{Op: "write", Path: path, Kind: ErrIO, Err: errors.New("target is a directory")}
	case statErr == nil && !opts.Overwrite:
		return newError("write", path, ErrAlreadyExists)
	case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
		return classify("stat", path, statErr)
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return classify("stat", dir, err)
		}
		if !opts.CreateFolder {
			return newError("write", path, ErrMissingParent)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return classify("create folder", dir, err)
		}
		applog.Info("fileio.mkdir", "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return classify("create temp file in", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return classify("write", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return classify("sync", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return classify("close", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return classify("chmod", tmpName, err)
	}

	if opts.Overwrite {
		if err = os.Rename(tmpName, path); err != nil {
			return classify("rename", path, err)
		}
		return nil
	}

	// Linking fails if another writer created the target meanwhile.
	if err = os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return newError("write", path, ErrAlreadyExists)
		}
		// Some filesystems have no hard links.
		if err = os.Rename(tmpName, path); err != nil {
			return classify("rename", path, err)
		}
		return nil
	}
	os.Remove(tmpName)
	return nil
}
