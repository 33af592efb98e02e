// Package closure computes the transitive closure of pack ids visible to a
// pack and rejects dependency cycles.
//
// A pack's closure is reflexive (it contains the pack itself) and
// transitively complete. It is computed once per pack, from the closures its
// direct dependencies already published, and is then handed on to the
// pack's own dependents as part of a Record:
//
//	base, _ := closure.Resolve("base", nil)
//	lib, _ := closure.Resolve("lib", []closure.Record{closure.NewRecord("base", base)})
//	// lib == {"base", "lib"}
//
// Records produced from older metadata may not carry a closure at all; such
// records resolve as if the closure were empty. Cycles that are only visible
// through such an edge cannot be detected here.
package closure
