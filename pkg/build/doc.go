// Package build orchestrates a monorepo build.
//
// A build discovers and validates packs, schedules them into dependency
// levels, then for every level and concurrently per pack: resolves the
// pack's closure from the records its dependencies published, maps its
// source files to destinations, processes each file and assembles the
// archive. A pack publishes its record only after it succeeded, so
// dependents never observe a failed or unfinished dependency.
//
// The first error cancels all outstanding work and fails the build.
package build
