// Package storage defines the record spool file-system abstraction.
package storage

import "time"

// FileMeta describes one spool file.
type FileMeta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for spool file operations.
type Provider interface {
	// List returns metadata for every spool file under dir (relative to the spool root).
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to the spool root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the spool root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the spool root).
	Delete(path string) error
}
