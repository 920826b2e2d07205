// Package storage keeps uploaded image files on the local filesystem.
//
// Stored names carry a timestamp prefix plus a short xid, so two uploads of
// "cat.png" in the same second still land in different files. The database
// only records the stored name; Disk resolves it inside its directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"
)

// ImageStore is what the post service needs from file storage.
type ImageStore interface {
	// Save writes the content under a new collision-free name derived from
	// originalName and returns that name.
	Save(originalName string, content io.Reader) (string, error)
	// Remove deletes a stored file. A missing file is not an error.
	Remove(storedName string) error
}

// Disk is an ImageStore backed by a single directory.
type Disk struct {
	dir string
	now func() time.Time
}

var _ ImageStore = (*Disk)(nil)

// NewDisk creates the directory if needed and returns a Disk rooted there.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir %s: %w", dir, err)
	}
	return &Disk{dir: dir, now: time.Now}, nil
}

// Dir returns the upload directory. The server exposes it read-only under
// /static/uploads/.
func (d *Disk) Dir() string {
	return d.dir
}

// Save stores content as "<YYYYMMDD_HHMMSS>_<xid>_<safe name>".
func (d *Disk) Save(originalName string, content io.Reader) (string, error) {
	safe := SecureFilename(originalName)
	if safe == "" {
		return "", fmt.Errorf("storage: file name %q has no usable characters", originalName)
	}
	name := fmt.Sprintf("%s_%s_%s", d.now().Format("20060102_150405"), xid.New().String(), safe)

	// O_EXCL: never overwrite an existing upload.
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", name, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: closing %s: %w", name, err)
	}

	return name, nil
}

// Remove deletes a stored file. Names that try to leave the upload
// directory are rejected.
func (d *Disk) Remove(storedName string) error {
	if storedName == "" || storedName != filepath.Base(storedName) {
		return fmt.Errorf("storage: invalid stored name %q", storedName)
	}
	err := os.Remove(filepath.Join(d.dir, storedName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: removing %s: %w", storedName, err)
	}
	return nil
}

// SecureFilename reduces a client-supplied file name to a safe base name:
// directory components are dropped, whitespace becomes "_", and any
// character outside [A-Za-z0-9._-] is removed. Leading dots and
// underscores are trimmed so the result is never a hidden file.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range strings.Join(strings.Fields(name), "_") {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// Extension returns the lower-cased extension of name without the dot, or
// "" if there is none.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
