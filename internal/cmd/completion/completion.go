// Package completion generates and installs shell completion scripts.
package completion

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentstation/ordsync/internal/cmd/cmdutil"
	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
)

// Supported shells.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// Shells lists the supported shells in help order.
var Shells = []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

// Generate writes the completion script for shell to w.
func Generate(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case ShellBash:
		return root.GenBashCompletionV2(w, true)
	case ShellZsh:
		return root.GenZshCompletion(w)
	case ShellFish:
		return root.GenFishCompletion(w, true)
	case ShellPowerShell:
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return errors.NewValidationError("shell", shell, "must be one of: bash, zsh, fish, powershell")
	}
}

// Path returns where Install places the script for shell.
// A Homebrew prefix wins over the per-user location.
func Path(shell string) (string, error) {
	name := "ordsync"
	brew := os.Getenv("HOMEBREW_PREFIX")

	home, err := os.UserHomeDir()
	if err != nil && brew == "" {
		return "", errors.WrapIO("resolve", "home directory", err)
	}

	switch shell {
	case ShellBash:
		if brew != "" {
			return filepath.Join(brew, "etc", "bash_completion.d", name), nil
		}
		return filepath.Join(home, ".bash_completion.d", name), nil
	case ShellZsh:
		if brew != "" {
			return filepath.Join(brew, "share", "zsh", "site-functions", "_"+name), nil
		}
		return filepath.Join(home, ".zsh", "completions", "_"+name), nil
	case ShellFish:
		if brew != "" {
			return filepath.Join(brew, "share", "fish", "vendor_completions.d", name+".fish"), nil
		}
		return filepath.Join(home, ".config", "fish", "completions", name+".fish"), nil
	default:
		return "", errors.NewValidationError("shell", shell, "install supports bash, zsh, and fish")
	}
}

// Install writes the completion script for shell to its Path on fs.
func Install(fs afero.Fs, root *cobra.Command, shell string) (string, error) {
	target, err := Path(shell)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := Generate(root, shell, &buf); err != nil {
		return "", err
	}

	if err := fs.MkdirAll(filepath.Dir(target), constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(target), err)
	}
	if err := afero.WriteFile(fs, target, buf.Bytes(), constants.FilePermissions); err != nil {
		return "", errors.WrapIO("write", target, err)
	}
	return target, nil
}

// NewCommand creates the completion command. Scripts are written to
// standard output unless --install is given.
func NewCommand(fs afero.Fs) *cobra.Command {
	var install bool

	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cmdutil.Args(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)),
		ValidArgs: Shells,
		Example: `  ordsync completion bash > /etc/bash_completion.d/ordsync
  ordsync completion zsh --install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			if !install {
				return Generate(cmd.Root(), shell, cmd.OutOrStdout())
			}

			target, err := Install(fs, cmd.Root(), shell)
			if err != nil {
				if errors.IsValidationError(err) {
					return cmdutil.Usage(err)
				}
				return err
			}
			cmd.PrintErrf("%s completions installed to %s\n", shell, target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&install, "install", false, "Install the script for the current user")
	return cmd
}
