package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
)

// maxMetadataBytes bounds how much of MetadataFile is read
const maxMetadataBytes = 16 << 20

// Prebuilt is a pack supplied already built, as a directory or a zip
type Prebuilt struct {
	Path string
	// Keys lists the pack's files, MetadataFile excluded, sorted
	Keys []string
	// Metadata is nil when the pack carries no MetadataFile
	Metadata *Metadata
}

// ReadPrebuilt lists the files of the prebuilt pack at path
func ReadPrebuilt(path string) (*Prebuilt, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "prebuilt pack %s does not exist", path).
			WithDetail("path", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveRead, "cannot access prebuilt pack %s", path).
			WithDetail("path", path)
	}

	var p *Prebuilt
	if info.IsDir() {
		p, err = readDir(path)
	} else {
		p, err = readZip(path)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(p.Keys)
	return p, nil
}

func readDir(root string) (*Prebuilt, error) {
	p := &Prebuilt{Path: root}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if key == MetadataFile {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			p.Metadata, err = DecodeMetadata(data)
			return err
		}
		p.Keys = append(p.Keys, key)
		return nil
	})
	if err != nil {
		if errors.GetErrorCode(err) != errors.ErrUnknown {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrArchiveRead, "cannot read prebuilt pack %s", root).
			WithDetail("path", root)
	}
	return p, nil
}

func readZip(path string) (*Prebuilt, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveRead, "cannot open prebuilt pack %s", path).
			WithDetail("path", path)
	}
	defer func() { _ = zr.Close() }()

	p := &Prebuilt{Path: path}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if f.Name != MetadataFile {
			p.Keys = append(p.Keys, f.Name)
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchiveRead, "cannot read %s in %s", MetadataFile, path).
				WithDetail("path", path)
		}
		if p.Metadata, err = DecodeMetadata(data); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(io.LimitReader(r, maxMetadataBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxMetadataBytes {
		return nil, errors.Newf(errors.ErrArchiveRead, "%s is larger than %d bytes", f.Name, maxMetadataBytes)
	}
	return data, nil
}
