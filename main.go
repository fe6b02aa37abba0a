package main

import (
	"log"

	"github.com/shaharia-lab/wasmdev/cmd"
)

func main() {
	skeleton, err := getSkeletonFS()
	if err != nil {
		log.Fatalf("failed to load project skeleton: %v", err)
	}
	cmd.SkeletonFS = skeleton
	cmd.Execute()
}
