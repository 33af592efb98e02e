// Test Type: Integration Test
// Description: Tests for the packs package - discovery, selection and source listing

package packs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/packs"
	"github.com/TouchController/E1epack/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	project := testutil.NewProject(t)
	project.AddPack(t, "zeta", "1.0.0", "alpha")
	alphaDir := project.AddPackDir(t, "alpha-dir")
	alphaDir.AddFile(t, "pack.yaml", "id: alpha\nversion: 2.0.0\n")
	project.AddPackDir(t, "no-manifest").AddFile(t, "readme.txt", "x")
	ignored := project.AddPack(t, "skipped", "1.0.0")
	ignored.AddFile(t, packs.IgnoreFile, "")
	project.AddPackDir(t, ".hidden").AddFile(t, "pack.toml", testutil.Manifest("hidden", "1.0.0"))
	require.NoError(t, os.WriteFile(filepath.Join(project.PacksDir, "stray.txt"), []byte("x"), 0644))

	found, err := packs.Discover(project.PacksDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "zeta"}, packs.IDs(found))
	assert.Equal(t, filepath.Join(project.PacksDir, "alpha-dir"), found[0].Dir)
	assert.Equal(t, "2.0.0", found[0].Version())
	assert.Equal(t, "alpha", string(found[1].Dependencies()[0]))
}

func TestDiscover_DuplicateID(t *testing.T) {
	project := testutil.NewProject(t)
	project.AddPackDir(t, "one").AddFile(t, "pack.toml", testutil.Manifest("same", "1.0.0"))
	project.AddPackDir(t, "two").AddFile(t, "pack.toml", testutil.Manifest("same", "1.0.0"))

	_, err := packs.Discover(project.PacksDir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackInvalid))
	assert.Equal(t, "same", errors.GetErrorDetails(err)["pack"])
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := packs.Discover(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestValidateAll(t *testing.T) {
	project := testutil.NewProject(t)
	project.AddPack(t, "good", "1.0.0")
	project.AddPackDir(t, "bad").AddFile(t, "pack.toml", testutil.Manifest("bad", "01.0.0"))

	found, err := packs.Discover(project.PacksDir)
	require.NoError(t, err)

	err = packs.ValidateAll(found)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedIdentifier))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "bad", details["pack"])
	assert.Contains(t, details["manifest"], "pack.toml")
}

func TestSelect(t *testing.T) {
	all := []packs.Pack{
		{Manifest: packs.Manifest{ID: "app", Dependencies: []string{"lib"}}},
		{Manifest: packs.Manifest{ID: "base"}},
		{Manifest: packs.Manifest{ID: "lib", Dependencies: []string{"base", "external"}}},
		{Manifest: packs.Manifest{ID: "other"}},
	}

	t.Run("no_names_selects_all", func(t *testing.T) {
		got, err := packs.Select(all, nil)
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("pulls_in_dependencies", func(t *testing.T) {
		got, err := packs.Select(all, []string{"app/"})
		require.NoError(t, err)
		assert.Equal(t, []string{"app", "base", "lib"}, packs.IDs(got))
	})

	t.Run("unknown_name", func(t *testing.T) {
		_, err := packs.Select(all, []string{"app", "missing"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPackNotFound))
		assert.Equal(t, []string{"missing"}, errors.GetErrorDetails(err)["notFound"])
	})
}

func TestNormalizePackName(t *testing.T) {
	assert.Equal(t, "vim", packs.NormalizePackName("vim///"))
	assert.Equal(t, "", packs.NormalizePackName("/"))
	assert.Equal(t, "a/b", packs.NormalizePackName("a/b/"))
}

func TestSourceFiles(t *testing.T) {
	project := testutil.NewProject(t)
	tp := project.AddPack(t, "p", "1.0.0")
	tp.AddFile(t, "pack.mcmeta", "{}")
	tp.AddFunction(t, "p", "function", "main", "say hi")
	tp.AddFunction(t, "p", "function", "sub/inner", "say inner")
	tp.AddFile(t, "data/p/tags/function/load.json", `{"values":[]}`)
	tp.AddFile(t, "README.md", "docs")
	tp.AddFile(t, ".git/config", "x")
	tp.AddFile(t, "drafts/"+packs.IgnoreFile, "")
	tp.AddFile(t, "drafts/wip.mcfunction", "x")

	found, err := packs.Discover(project.PacksDir)
	require.NoError(t, err)
	require.Len(t, found, 1)

	files, err := found[0].SourceFiles([]string{"*.md", ".*"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"data/p/function/main.mcfunction",
		"data/p/function/sub/inner.mcfunction",
		"data/p/tags/function/load.json",
		"pack.mcmeta",
	}, files)
}

func TestPrebuiltPath(t *testing.T) {
	p := packs.Pack{Dir: "/repo/packs/app"}
	assert.Equal(t, filepath.FromSlash("/repo/packs/third/x.zip"), p.PrebuiltPath(packs.Prebuilt{Path: "../third/x.zip"}))
	assert.Equal(t, "/abs/x", p.PrebuiltPath(packs.Prebuilt{Path: "/abs/x"}))
}

func TestCheckJSON(t *testing.T) {
	project := testutil.NewProject(t)
	good := project.AddPack(t, "good", "1.0.0")
	good.AddFile(t, "pack.mcmeta", "{ \"pack\": { \"pack_format\": 48 } }")
	good.AddFile(t, "data/good/tags/function/load.json", `{"values":[]}`)
	good.AddFile(t, "notes.md", "{ not json")
	bad := project.AddPack(t, "bad", "1.0.0")
	bad.AddFile(t, "data/bad/recipe/broken.json", `{"type": }`)
	bad.AddFile(t, "skipped.json", "{")

	found, err := packs.Discover(project.PacksDir)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.NoError(t, found[1].CheckJSON(nil))

	err = found[0].CheckJSON([]string{"skipped.json"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "bad", details["pack"])
	assert.Equal(t, "data/bad/recipe/broken.json", details["source"])
}
