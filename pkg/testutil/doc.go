// Package testutil provides utilities for testing e1epack components.
//
// Key components:
//   - Project: a temporary project root with a packs directory
//   - TestPack: a pack directory with helpers to write its manifest and files
//
// All test data should be defined inline; every Project lives under
// t.TempDir() and is removed when the test ends.
package testutil
