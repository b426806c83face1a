package completion

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootWith(fs afero.Fs) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	root := &cobra.Command{Use: "ordsync"}
	root.AddCommand(&cobra.Command{Use: "sync", Run: func(*cobra.Command, []string) {}})
	root.AddCommand(NewCommand(fs))

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	return root, &stdout, &stderr
}

func TestGenerate(t *testing.T) {
	for _, shell := range Shells {
		t.Run(shell, func(t *testing.T) {
			root, _, _ := rootWith(afero.NewMemMapFs())
			var buf bytes.Buffer

			require.NoError(t, Generate(root, shell, &buf))
			assert.Contains(t, buf.String(), "ordsync")
		})
	}

	t.Run("unknown shell", func(t *testing.T) {
		root, _, _ := rootWith(afero.NewMemMapFs())
		assert.Error(t, Generate(root, "tcsh", &bytes.Buffer{}))
	})
}

func TestPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HOMEBREW_PREFIX", "")

	tests := []struct {
		shell string
		want  string
	}{
		{ShellBash, filepath.Join(home, ".bash_completion.d", "ordsync")},
		{ShellZsh, filepath.Join(home, ".zsh", "completions", "_ordsync")},
		{ShellFish, filepath.Join(home, ".config", "fish", "completions", "ordsync.fish")},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			got, err := Path(tt.shell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Path(ShellPowerShell)
	assert.Error(t, err)
}

func TestPath_Homebrew(t *testing.T) {
	t.Setenv("HOMEBREW_PREFIX", "/opt/homebrew")

	got, err := Path(ShellZsh)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/opt/homebrew", "share", "zsh", "site-functions", "_ordsync"), got)
}

func TestCommand_Stdout(t *testing.T) {
	root, stdout, _ := rootWith(afero.NewMemMapFs())
	root.SetArgs([]string{"completion", "fish"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "complete -c ordsync")
}

func TestCommand_Install(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HOMEBREW_PREFIX", "")

	fs := afero.NewMemMapFs()
	root, stdout, stderr := rootWith(fs)
	root.SetArgs([]string{"completion", "bash", "--install"})

	require.NoError(t, root.Execute())
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "bash completions installed to")

	script, err := afero.ReadFile(fs, filepath.Join(home, ".bash_completion.d", "ordsync"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "ordsync")
}

func TestCommand_InvalidShell(t *testing.T) {
	root, _, _ := rootWith(afero.NewMemMapFs())
	root.SetArgs([]string{"completion", "tcsh"})
	root.SilenceErrors = true
	root.SilenceUsage = true

	assert.Error(t, root.Execute())
}
