package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/build"
)

const releaseSlug = "shaharia-lab/wasmdev"

// NewUpdateCmd returns the "update" subcommand that self-updates the binary.
func NewUpdateCmd() *cobra.Command {
	var yes, check bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update wasmdev to the latest release",
		Long:  "Check GitHub releases for a newer version of wasmdev and replace the running binary.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !build.IsRelease() {
				return fmt.Errorf("cannot update build %q; install a tagged release first", build.Version)
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			updater, err := selfupdate.NewUpdater(selfupdate.Config{})
			if err != nil {
				return fmt.Errorf("creating updater: %w", err)
			}
			release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}

			current := strings.TrimPrefix(build.Version, "v")
			if !found || !release.GreaterThan(current) {
				fmt.Fprintf(out, "wasmdev %s is up to date\n", build.Version)
				return nil
			}
			fmt.Fprintf(out, "wasmdev %s is available (current %s)\n", release.Version(), build.Version)
			if check {
				return nil
			}

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Update to %s?", release.Version()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Update canceled.")
					return nil
				}
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("finding current executable: %w", err)
			}
			if err := updater.UpdateTo(ctx, release, exe); err != nil {
				return fmt.Errorf("updating: %w", err)
			}
			fmt.Fprintf(out, "Updated to %s.\n", release.Version())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether an update is available")
	return cmd
}

// confirm asks a yes/no question on out and reads the answer from in.
// A final answer without a trailing newline still counts.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	a := strings.TrimSpace(answer)
	return a == "y" || a == "Y", nil
}
