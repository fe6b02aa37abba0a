package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewInitCmd returns the "init" subcommand, which writes the project
// skeleton (project file, entry script, page and stylesheet).
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter project layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			if SkeletonFS == nil {
				return errors.New("project skeleton is not available in this build")
			}
			written, err := writeSkeleton(SkeletonFS, root, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range written {
				fmt.Fprintf(out, "created %s\n", f)
			}
			if len(written) == 0 {
				fmt.Fprintln(out, "nothing to do; use --force to overwrite")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}

// writeSkeleton copies skeleton into root. Existing files are kept unless
// force is set. It returns the files written, relative to root.
func writeSkeleton(skeleton fs.FS, root string, force bool) ([]string, error) {
	var written []string
	err := fs.WalkDir(skeleton, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		target := filepath.Join(root, filepath.FromSlash(path))
		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}
		data, err := fs.ReadFile(skeleton, path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("writing project skeleton: %w", err)
	}
	return written, nil
}
