package archive_test

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/TouchController/E1epack/pkg/archive"
	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRemaps = []archive.Remap{{From: "data/*/tags/function/", To: "data/*/tags/functions/"}}

// artifacts writes processed files into a work dir and maps them
func artifacts(t *testing.T, files map[string]string) (string, *mapping.Mapping) {
	t.Helper()
	work := t.TempDir()
	paths := make([]string, 0, len(files))
	for rel, content := range files {
		p := filepath.Join(work, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		paths = append(paths, rel)
	}
	m, err := mapping.Build("core", paths, true)
	require.NoError(t, err)
	return work, m
}

func readZip(t *testing.T, path string) ([]string, map[string]string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()

	var names []string
	contents := map[string]string{}
	for _, f := range zr.File {
		r, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		_ = r.Close()
		names = append(names, f.Name)
		contents[f.Name] = string(data)
		assert.True(t, f.Modified.Equal(archive.EntryTime), "mod time of %s", f.Name)
	}
	return names, contents
}

func TestRemap_Apply(t *testing.T) {
	tests := []struct {
		name  string
		remap archive.Remap
		key   string
		want  string
		match bool
	}{
		{"wildcard", defaultRemaps[0], "data/core/tags/function/load.json", "data/core/tags/functions/load.json", true},
		{"nested_remainder", defaultRemaps[0], "data/lib/tags/function/a/b.json", "data/lib/tags/functions/a/b.json", true},
		{"no_match", defaultRemaps[0], "data/core/tags/functions/load.json", "data/core/tags/functions/load.json", false},
		{"prefix_only", defaultRemaps[0], "data/core/tags/function", "data/core/tags/function", false},
		{"literal", archive.Remap{From: "assets/", To: "resources/"}, "assets/x.png", "resources/x.png", true},
		{"two_wildcards", archive.Remap{From: "data/*/x/*/", To: "out/*/*/"}, "data/a/x/b/c.json", "out/a/b/c.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.remap.Apply(tt.key)
			assert.Equal(t, tt.match, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDestinations(t *testing.T) {
	_, m := artifacts(t, map[string]string{
		"data/core/function/init.mcfunction": "say hi",
		"data/core/tags/function/load.json":  "{}",
	})

	assert.Equal(t, []string{
		"data/core/function/init.mcfunction",
		"data/core/functions/init.mcfunction",
		"data/core/tags/functions/load.json",
	}, archive.Destinations(m, defaultRemaps))
}

func TestAssemble(t *testing.T) {
	work, m := artifacts(t, map[string]string{
		"data/core/function/init.mcfunction": "say init\n",
		"data/core/tags/function/load.json":  `{"values":["core:init"]}`,
		"pack.mcmeta":                        `{"pack":{}}`,
	})
	out := filepath.Join(t.TempDir(), "dist", "core-1.0.0.zip")

	res, err := archive.Assemble(context.Background(), archive.Spec{
		Path:    out,
		WorkDir: work,
		Mapping: m,
		Remaps:  defaultRemaps,
		Metadata: &archive.Metadata{
			ID:      "core",
			Version: "1.0.0",
			Closure: []string{"core"},
			BuildID: "b-1",
		},
	})
	require.NoError(t, err)

	want := []string{
		"data/core/function/init.mcfunction",
		"data/core/functions/init.mcfunction",
		"data/core/tags/functions/load.json",
		"pack.mcmeta",
		archive.MetadataFile,
	}
	assert.Equal(t, want, res.Entries)
	assert.Equal(t, out, res.Path)
	assert.Positive(t, res.Size)

	names, contents := readZip(t, out)
	assert.Equal(t, want, names)
	assert.Equal(t, "say init\n", contents["data/core/functions/init.mcfunction"])

	meta, err := archive.DecodeMetadata([]byte(contents[archive.MetadataFile]))
	require.NoError(t, err)
	assert.Equal(t, "core", meta.ID)
	assert.Equal(t, []string{"core"}, meta.Closure)
	assert.Equal(t, want[:4], meta.Files)
}

func TestAssemble_Deterministic(t *testing.T) {
	work, m := artifacts(t, map[string]string{
		"data/core/functions/a.mcfunction": "say a",
		"data/core/functions/b.mcfunction": "say b",
	})
	dir := t.TempDir()
	spec := archive.Spec{WorkDir: work, Mapping: m, Metadata: &archive.Metadata{ID: "core", Version: "1.0.0"}}

	spec.Path = filepath.Join(dir, "one.zip")
	_, err := archive.Assemble(context.Background(), spec)
	require.NoError(t, err)
	spec.Path = filepath.Join(dir, "two.zip")
	_, err = archive.Assemble(context.Background(), spec)
	require.NoError(t, err)

	one, err := os.ReadFile(filepath.Join(dir, "one.zip"))
	require.NoError(t, err)
	two, err := os.ReadFile(filepath.Join(dir, "two.zip"))
	require.NoError(t, err)
	assert.Equal(t, one, two)
}

func TestAssemble_IdenticalContentMerged(t *testing.T) {
	work, m := artifacts(t, map[string]string{
		"data/core/tags/function/load.json":  `{"values":[]}`,
		"data/core/tags/functions/load.json": `{"values":[]}`,
	})

	res, err := archive.Assemble(context.Background(), archive.Spec{
		Path:    filepath.Join(t.TempDir(), "out.zip"),
		WorkDir: work,
		Mapping: m,
		Remaps:  defaultRemaps,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
	assert.Equal(t, []string{"data/core/tags/functions/load.json"}, res.Entries)
}

func TestAssemble_Collision(t *testing.T) {
	work, m := artifacts(t, map[string]string{
		"data/core/tags/function/load.json":  `{"values":["core:a"]}`,
		"data/core/tags/functions/load.json": `{"values":["core:b"]}`,
	})
	out := filepath.Join(t.TempDir(), "out.zip")

	_, err := archive.Assemble(context.Background(), archive.Spec{
		Path:    out,
		WorkDir: work,
		Mapping: m,
		Remaps:  defaultRemaps,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationCollision))

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "data/core/tags/functions/load.json", details["destination"])
	assert.Equal(t, "data/core/tags/function/load.json", details["first"])
	assert.Equal(t, "data/core/tags/functions/load.json", details["second"])

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no partial archive")
}

func TestAssemble_MetadataCollision(t *testing.T) {
	work, m := artifacts(t, map[string]string{
		archive.MetadataFile: `{"id":"other"}`,
	})

	_, err := archive.Assemble(context.Background(), archive.Spec{
		Path:     filepath.Join(t.TempDir(), "out.zip"),
		WorkDir:  work,
		Mapping:  m,
		Metadata: &archive.Metadata{ID: "core", Version: "1.0.0"},
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationCollision))
}

func TestAssemble_MissingArtifact(t *testing.T) {
	m, err := mapping.Build("core", []string{"data/core/functions/a.mcfunction"}, true)
	require.NoError(t, err)

	_, err = archive.Assemble(context.Background(), archive.Spec{
		Path:    filepath.Join(t.TempDir(), "out.zip"),
		WorkDir: t.TempDir(),
		Mapping: m,
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestAssemble_Cancelled(t *testing.T) {
	work, m := artifacts(t, map[string]string{"pack.mcmeta": "{}"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := archive.Assemble(ctx, archive.Spec{Path: filepath.Join(t.TempDir(), "x.zip"), WorkDir: work, Mapping: m})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadPrebuilt_Zip(t *testing.T) {
	work, m := artifacts(t, map[string]string{
		"data/vanilla/functions/tick.mcfunction": "say tick",
	})
	out := filepath.Join(t.TempDir(), "vanilla.zip")
	_, err := archive.Assemble(context.Background(), archive.Spec{
		Path:     out,
		WorkDir:  work,
		Mapping:  m,
		Metadata: &archive.Metadata{ID: "vanilla", Version: "2.0.0", Closure: []string{"base", "vanilla"}},
	})
	require.NoError(t, err)

	p, err := archive.ReadPrebuilt(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"data/vanilla/functions/tick.mcfunction"}, p.Keys)
	require.NotNil(t, p.Metadata)
	assert.Equal(t, []string{"base", "vanilla"}, p.Metadata.Closure)
}

func TestReadPrebuilt_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data", "old", "functions"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "old", "functions", "x.mcfunction"), []byte("say x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.mcmeta"), []byte("{}"), 0644))

	p, err := archive.ReadPrebuilt(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"data/old/functions/x.mcfunction", "pack.mcmeta"}, p.Keys)
	assert.Nil(t, p.Metadata)
}

func TestReadPrebuilt_Errors(t *testing.T) {
	_, err := archive.ReadPrebuilt(filepath.Join(t.TempDir(), "missing.zip"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))

	notZip := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0644))
	_, err = archive.ReadPrebuilt(notZip)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveRead))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, archive.MetadataFile), []byte("{"), 0644))
	_, err = archive.ReadPrebuilt(dir)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveRead))
}
