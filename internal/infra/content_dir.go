package infra

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidContentName = errors.New("invalid content filename")

// ContentDir stores blobs flat under root, one file per generated name.
type ContentDir struct {
	root string
}

func NewContentDir(root string) (*ContentDir, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	return &ContentDir{root: root}, nil
}

func (d *ContentDir) Root() string {
	return d.root
}

func (d *ContentDir) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidContentName
	}
	return filepath.Join(d.root, name), nil
}

// Save writes r to name and returns the byte count. The file is complete
// when Save returns nil.
func (d *ContentDir) Save(name string, r io.Reader) (int64, error) {
	path, err := d.Path(name)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		_ = os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("close %s: %w", name, err)
	}

	return n, nil
}

// Remove deletes name; a file that is already gone is not an error.
func (d *ContentDir) Remove(name string) error {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
