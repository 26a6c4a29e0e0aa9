// Package storage persists uploaded assessment files.
package storage

import "io"

// Store saves and retrieves uploaded file contents.
type Store interface {
	// Save writes the contents under a collision-free name derived from
	// originalName and returns the stored path.
	Save(originalName string, contents io.Reader) (string, error)
	// Open returns a reader for a previously stored path.
	Open(path string) (io.ReadSeekCloser, error)
	// Remove deletes a previously stored path.
	Remove(path string) error
}
