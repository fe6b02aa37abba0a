package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/config"
	"github.com/shaharia-lab/wasmdev/internal/style"
)

// NewConfigCmd returns the "config" subcommand, which prints the resolved
// project configuration.
func NewConfigCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved project configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := loadProject(cmd, cfg)
			if err != nil {
				return err
			}
			out, err := project.YAML()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# root: %s\n# mode: %s\n# style plugins: %s\n",
				project.Root, project.Mode, strings.Join(style.Plugins(project.Mode), ", "))
			_, err = w.Write(out)
			return err
		},
	}
}
