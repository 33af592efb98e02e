// Package ids holds the identifier grammars used when a project is
// configured: pack ids (namespace ids), pack versions (semantic versions)
// and the relative source paths a pack contributes.
//
// The predicates are pure and are checked before any dependency resolution
// runs, so that a malformed identifier never reaches the resolver.
package ids
