// Package worker rewrites function source files into their processed form.
//
// A rewrite expands line continuations and qualifies every call target of a
// `function` command against the ids the pack may call: its own functions
// and those of every pack in its closure. Unknown targets fail the file with
// UNRESOLVED_CALL_TARGET.
//
// Two Worker implementations exist. Local runs the rewrite in-process.
// Process spawns `e1epack worker` per file, which runs Serve, so a crashing
// or misbehaving rewrite cannot take the orchestrator down with it.
package worker
