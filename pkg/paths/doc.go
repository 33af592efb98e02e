// Package paths locates the project root for e1epack.
//
// The root is resolved using the following priority:
//  1. An explicit root given on the command line
//  2. The E1EPACK_ROOT environment variable
//  3. The nearest ancestor of the working directory holding a project config file
//  4. The git repository root
//  5. The working directory (reported as a fallback)
//
// A leading ~ is expanded to the home directory in explicit and environment roots.
package paths
