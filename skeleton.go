//go:build !dev

package main

import (
	"embed"
	"io/fs"
)

//go:embed skeleton
var embeddedSkeleton embed.FS

func getSkeletonFS() (fs.FS, error) {
	return fs.Sub(embeddedSkeleton, "skeleton")
}
