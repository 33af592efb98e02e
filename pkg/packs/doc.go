// Package packs provides functionality for discovering, loading, and
// selecting the packs of a monorepo.
//
// A pack is a directory under the project's packs directory holding a
// manifest (pack.toml, or pack.yaml / pack.yml) and a namespaced tree of
// content files. This package handles:
//
//   - Pack discovery and manifest loading
//   - Manifest validation (pack ids, versions, dependency declarations)
//   - Pack ignore functionality (.e1epackignore files)
//   - Pack selection together with the packs they depend on
//   - Enumeration of a pack's source files
//
// Discovery is purely structural; dependency resolution happens in the
// closure and graph packages.
package packs
