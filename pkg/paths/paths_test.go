package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TouchController/E1epack/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot_Explicit(t *testing.T) {
	t.Setenv(paths.EnvRoot, "/somewhere/else")
	dir := t.TempDir()

	root, err := paths.FindRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root.Path)
	assert.Equal(t, paths.SourceExplicit, root.Source)
	assert.False(t, root.UsedFallback())
}

func TestFindRoot_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.EnvRoot, dir)

	root, err := paths.FindRoot("")
	require.NoError(t, err)
	assert.Equal(t, dir, root.Path)
	assert.Equal(t, paths.SourceEnv, root.Source)
}

func TestFindRoot_ConfigInAncestor(t *testing.T) {
	t.Setenv(paths.EnvRoot, "")
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "e1epack.toml"), []byte(""), 0644))
	nested := filepath.Join(dir, "packs", "core", "data")
	require.NoError(t, os.MkdirAll(nested, 0755))
	chdir(t, nested)

	root, err := paths.FindRoot("")
	require.NoError(t, err)
	assert.Equal(t, dir, root.Path)
	assert.Equal(t, paths.SourceConfig, root.Source)
}

func TestFindRoot_HiddenConfig(t *testing.T) {
	t.Setenv(paths.EnvRoot, "")
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".e1epack.toml"), []byte(""), 0644))
	chdir(t, dir)

	root, err := paths.FindRoot("")
	require.NoError(t, err)
	assert.Equal(t, dir, root.Path)
}

func TestFindRoot_RelativeExplicitIsAbsolute(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "proj"), 0755))
	chdir(t, dir)

	root, err := paths.FindRoot("proj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "proj"), root.Path)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde_slash", in: "~/packs", want: filepath.Join(home, "packs")},
		{name: "other_user", in: "~bob/packs", want: "~bob/packs"},
		{name: "absolute", in: "/tmp/x", want: "/tmp/x"},
		{name: "relative", in: "x/~", want: "x/~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paths.ExpandHome(tt.in))
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the rest of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", abs)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}
