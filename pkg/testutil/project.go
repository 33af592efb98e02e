package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Project is a temporary project root
type Project struct {
	Root     string
	PacksDir string
}

// TestPack represents a test pack with its directory structure
type TestPack struct {
	ID  string
	Dir string
}

// NewProject creates an empty project with a packs directory
func NewProject(t *testing.T) *Project {
	t.Helper()

	root := t.TempDir()
	packsDir := filepath.Join(root, "packs")
	require.NoError(t, os.MkdirAll(packsDir, 0755))

	return &Project{Root: root, PacksDir: packsDir}
}

// WriteConfig writes the project's e1epack.toml
func (p *Project) WriteConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(p.Root, "e1epack.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// AddPack creates a pack directory with a pack.toml declaring id, version
// and the given monorepo dependencies
func (p *Project) AddPack(t *testing.T, id, version string, deps ...string) *TestPack {
	t.Helper()

	tp := p.AddPackDir(t, id)
	tp.AddFile(t, "pack.toml", Manifest(id, version, deps...))
	return tp
}

// AddPackDir creates an empty pack directory named dir
func (p *Project) AddPackDir(t *testing.T, dir string) *TestPack {
	t.Helper()

	packDir := filepath.Join(p.PacksDir, dir)
	require.NoError(t, os.MkdirAll(packDir, 0755))
	return &TestPack{ID: dir, Dir: packDir}
}

// AddFile adds a file to the test pack, creating parent directories
func (tp *TestPack) AddFile(t *testing.T, rel, content string) string {
	t.Helper()

	path := filepath.Join(tp.Dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// AddFunction adds data/<ns>/<dir>/<name>.mcfunction
func (tp *TestPack) AddFunction(t *testing.T, ns, dir, name, content string) string {
	t.Helper()

	return tp.AddFile(t, fmt.Sprintf("data/%s/%s/%s.mcfunction", ns, dir, name), content)
}

// Manifest renders a pack.toml
func Manifest(id, version string, deps ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id = %q\nversion = %q\n", id, version)
	if len(deps) > 0 {
		quoted := make([]string, len(deps))
		for i, d := range deps {
			quoted[i] = fmt.Sprintf("%q", d)
		}
		fmt.Fprintf(&b, "dependencies = [%s]\n", strings.Join(quoted, ", "))
	}
	return b.String()
}
