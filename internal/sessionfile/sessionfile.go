// Package sessionfile keeps small named blobs in a per-user directory that
// lives only as long as the desktop/login session. On Linux the directory
// sits under $XDG_RUNTIME_DIR, which the OS removes at logout; elsewhere it
// falls back to a per-uid temp directory, which lasts until the OS clears
// its temp files. Nothing written here is meant to survive a full restart.
// The directory must be a real directory owned by the current user with no
// group or other permissions; anything else is refused.
package sessionfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FilePerms restricts session files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the session directory.
const DirPerms = 0o700

// ErrInvalidName is returned for entry names that would escape the directory.
var ErrInvalidName = errors.New("sessionfile: invalid entry name")

// ErrUnsafeDir is returned when the session directory is a symlink, is not
// owned by the current user, or is accessible to other users.
var ErrUnsafeDir = errors.New("sessionfile: unsafe session directory")

// Dir is a directory of named session entries. The zero value is unusable;
// construct with Open.
type Dir struct {
	path string
}

// Open returns a Dir rooted at path. The directory is created lazily on the
// first write.
func Open(path string) *Dir {
	return &Dir{path: path}
}

// DefaultPath returns the session directory for app:
// $XDG_RUNTIME_DIR/<app> when set, otherwise <tmp>/<app>-<uid>.
func DefaultPath(app string) string {
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, app)
	}

	return filepath.Join(os.TempDir(), app+"-"+strconv.Itoa(os.Getuid()))
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Get reads the named entry. Returns (nil, nil) if it does not exist.
func (d *Dir) Get(name string) ([]byte, error) {
	path, err := d.entryPath(name)
	if err != nil {
		return nil, err
	}

	if err := d.Check(); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("sessionfile: reading %s: %w", path, err)
	}

	return data, nil
}

// Set writes the named entry atomically (write-to-temp + rename) with 0600
// permissions.
func (d *Dir) Set(name string, data []byte) error {
	path, err := d.entryPath(name)
	if err != nil {
		return err
	}

	if mkErr := os.MkdirAll(d.path, DirPerms); mkErr != nil {
		return fmt.Errorf("sessionfile: creating directory %s: %w", d.path, mkErr)
	}

	if err := d.Check(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.path, ".entry-*.tmp")
	if err != nil {
		return fmt.Errorf("sessionfile: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("sessionfile: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("sessionfile: writing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sessionfile: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("sessionfile: renaming: %w", err)
	}

	success = true

	return nil
}

// Remove deletes the named entry. Removing a missing entry is not an error.
func (d *Dir) Remove(name string) error {
	path, err := d.entryPath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("sessionfile: removing %s: %w", path, err)
	}

	return nil
}

func (d *Dir) entryPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return filepath.Join(d.path, name+".json"), nil
}

// Check verifies the directory is safe to read secrets from and write
// them to. A missing directory yields an error wrapping fs.ErrNotExist.
func (d *Dir) Check() error {
	info, err := os.Lstat(d.path)
	if err != nil {
		return fmt.Errorf("sessionfile: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnsafeDir, d.path)
	}

	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("%w: %s has mode %04o, want %04o", ErrUnsafeDir, d.path, perm, DirPerms)
	}

	if !ownedByCurrentUser(info) {
		return fmt.Errorf("%w: %s is owned by another user", ErrUnsafeDir, d.path)
	}

	return nil
}
