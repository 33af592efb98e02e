// Package archive assembles a pack's processed files into a deployable zip.
//
// Destinations come from the pack's mapping, rewritten by prefix remaps.
// Equal inputs produce byte-identical archives: entries are sorted and
// carry a fixed modification time. Two files claiming one destination are
// merged when their contents match and rejected with
// DESTINATION_COLLISION otherwise. Every archive ends with an e1epack.json
// metadata entry recording the pack's closure, which is how a built pack
// can later serve as a prebuilt dependency (see ReadPrebuilt).
package archive
