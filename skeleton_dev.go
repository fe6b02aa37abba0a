//go:build dev

package main

import (
	"io/fs"
	"os"
)

// getSkeletonFS reads the skeleton from the working tree in dev builds so
// template edits show up without recompiling.
func getSkeletonFS() (fs.FS, error) {
	return os.DirFS("skeleton"), nil
}
