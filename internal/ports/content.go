package ports

import "io"

// ContentStore is the flat directory of audio blobs referenced by filename.
type ContentStore interface {
	Save(name string, r io.Reader) (int64, error)
	Remove(name string) error
	Path(name string) (string, error)
}
