// Package mapping decides where every processed file of a pack lands.
//
// Build allocates one Handle per source file and registers it under the
// file's own path. Packs written entirely in the legacy layout, with their
// functions under data/<id>/function/, additionally get every such file
// registered under the canonical data/<id>/functions/ path, pointing at the
// same Handle. A pack that already has any file under the canonical
// directory is left unaliased.
package mapping
