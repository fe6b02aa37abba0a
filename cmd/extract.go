package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/style"
)

// NewExtractCmd returns the "extract" subcommand, which prints the class
// name candidates the purge pass would find in the given files.
func NewExtractCmd() *cobra.Command {
	var unique bool

	cmd := &cobra.Command{
		Use:   "extract <file>...",
		Short: "Print the class-name tokens extracted from templates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tokens []string
			for _, name := range args {
				//nolint:gosec // files are named by the user
				data, err := os.ReadFile(name)
				if err != nil {
					return fmt.Errorf("reading %s: %w", name, err)
				}
				tokens = append(tokens, style.Extract(string(data))...)
			}
			if unique {
				set := style.NewTokenSet(tokens...)
				tokens = tokens[:0]
				for t := range set {
					tokens = append(tokens, t)
				}
				sort.Strings(tokens)
			}
			out := cmd.OutOrStdout()
			for _, t := range tokens {
				fmt.Fprintln(out, t)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&unique, "unique", "u", false, "Print each token once, sorted")
	return cmd
}
