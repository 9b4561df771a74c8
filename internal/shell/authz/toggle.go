// Package authz reads the external production authorization toggle.
// This is part of the Imperative Shell - it touches the filesystem.
package authz

import (
	"fmt"
	"os"
)

// DefaultTogglePath is the conventional sentinel file name, relative to the
// working directory the operator runs from.
const DefaultTogglePath = ".stackpact-armed"

// FileToggle reads the authorization toggle from a sentinel file: the gate is
// open exactly while the file exists. The toggle is external, read-only input
// to the core; nothing here creates or removes it.
type FileToggle struct {
	Path string
}

// NewFileToggle creates a FileToggle for the given sentinel path.
func NewFileToggle(path string) FileToggle {
	if path == "" {
		path = DefaultTogglePath
	}
	return FileToggle{Path: path}
}

// Open reports whether the sentinel file exists. A stat failure other than
// not-exist is reported rather than read as closed: a permission error on the
// toggle is an operational defect, not a deliberate operator decision.
func (t FileToggle) Open() (bool, error) {
	_, err := os.Stat(t.Path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("read authorization toggle %s: %w", t.Path, err)
}
