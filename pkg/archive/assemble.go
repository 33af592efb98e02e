package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/TouchController/E1epack/pkg/mapping"
)

// metadataSource names the metadata entry in collision errors
const metadataSource = "<metadata>"

// EntryTime is the modification time of every entry
var EntryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Spec describes one archive to assemble
type Spec struct {
	// Path is the archive to create
	Path string
	// WorkDir holds the processed artifacts named by Mapping's handles
	WorkDir string
	Mapping *mapping.Mapping
	Remaps  []Remap
	// Metadata is written as MetadataFile; its Files field is filled in
	Metadata *Metadata
}

// Result summarises a written archive
type Result struct {
	Path string
	// Entries lists the archive paths, metadata included, in write order
	Entries []string
	// Merged counts destinations claimed by more than one handle with
	// identical contents
	Merged int
	Size   int64
}

type entry struct {
	source string
	data   []byte
	sum    [sha256.Size]byte
}

// Assemble writes the archive described by spec. The archive appears at
// spec.Path only if assembly succeeds.
func Assemble(ctx context.Context, spec Spec) (*Result, error) {
	logger := logging.GetLogger("archive")
	if spec.Mapping == nil {
		return nil, errors.New(errors.ErrInvalidInput, "archive spec requires a mapping")
	}

	entries := make(map[string]*entry)
	merged := 0
	for _, key := range spec.Mapping.Keys() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, _ := spec.Mapping.Lookup(key)
		dest := ApplyRemaps(spec.Remaps, key)

		data, err := os.ReadFile(h.Path(spec.WorkDir))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read artifact for %s", h.Source).
				WithDetail("source", h.Source)
		}
		e := &entry{source: h.Source, data: data, sum: sha256.Sum256(data)}

		ok, err := claim(entries, dest, e)
		if err != nil {
			return nil, err
		}
		if !ok {
			merged++
			logger.Debug().
				Str("destination", dest).
				Str("source", h.Source).
				Msg("Identical content at destination, keeping one entry")
		}
	}

	files := make([]string, 0, len(entries))
	for dest := range entries {
		files = append(files, dest)
	}
	sort.Strings(files)

	if spec.Metadata != nil {
		meta := *spec.Metadata
		meta.Files = files
		data, err := meta.Encode()
		if err != nil {
			return nil, err
		}
		e := &entry{source: metadataSource, data: data, sum: sha256.Sum256(data)}
		if _, err := claim(entries, MetadataFile, e); err != nil {
			return nil, err
		}
		// the metadata goes last unless a pack file already supplied it
		if entries[MetadataFile] == e {
			files = append(files, MetadataFile)
		}
	}

	size, err := write(ctx, spec.Path, files, entries)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", spec.Path).
		Int("entries", len(files)).
		Int("merged", merged).
		Int64("size", size).
		Msg("Archive written")

	return &Result{Path: spec.Path, Entries: files, Merged: merged, Size: size}, nil
}

// claim stores e at dest. It reports false when an identical entry is
// already there.
func claim(entries map[string]*entry, dest string, e *entry) (bool, error) {
	prev, ok := entries[dest]
	if !ok {
		entries[dest] = e
		return true, nil
	}
	if prev.sum == e.sum && bytes.Equal(prev.data, e.data) {
		return false, nil
	}
	return false, errors.Newf(errors.ErrDestinationCollision, "destination %q is claimed by %q and %q with different contents", dest, prev.source, e.source).
		WithDetail("destination", dest).
		WithDetail("first", prev.source).
		WithDetail("second", e.source)
}

func write(ctx context.Context, path string, files []string, entries map[string]*entry) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "cannot create %s", path)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: EntryTime,
		}
		header.SetMode(0644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "cannot add %s", name)
		}
		if _, err := w.Write(entries[name].data); err != nil {
			return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "cannot add %s", name)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "cannot finish %s", path)
	}

	info, err := tmp.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "cannot finish %s", path)
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "cannot finish %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "cannot move archive into %s", path)
	}
	committed = true
	return info.Size(), nil
}
