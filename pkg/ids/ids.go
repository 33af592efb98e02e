package ids

import (
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
	"golang.org/x/mod/semver"
)

// PackID names a pack within the monorepo. It is compared by exact string
// equality and must satisfy the namespace-id grammar.
type PackID string

// MaxPackIDLength is the longest accepted namespace id
const MaxPackIDLength = 255

// Identifier kinds, recorded in the "kind" detail of MALFORMED_IDENTIFIER errors
const (
	KindPackID  = "pack id"
	KindVersion = "version"
	KindPath    = "path"
)

func (id PackID) String() string { return string(id) }

// IsPackID reports whether s is a well-formed namespace id
func IsPackID(s string) bool {
	return checkPackID(s) == ""
}

// ValidatePackID returns a MALFORMED_IDENTIFIER error describing why s is
// not a namespace id, or nil.
func ValidatePackID(s string) error {
	if reason := checkPackID(s); reason != "" {
		return malformed(KindPackID, s, reason)
	}
	return nil
}

func checkPackID(s string) string {
	if s == "" {
		return "must not be empty"
	}
	if len(s) > MaxPackIDLength {
		return "must be at most 255 characters"
	}
	for i := 0; i < len(s); i++ {
		if !isNamespaceChar(s[i]) {
			return "may only contain lowercase letters, digits, '_', '-' and '.'"
		}
	}
	if isSeparator(s[0]) {
		return "must not start with '.', '-' or '_'"
	}
	if isSeparator(s[len(s)-1]) {
		return "must not end with '.', '-' or '_'"
	}
	if strings.Contains(s, "..") {
		return "must not contain '..'"
	}
	return ""
}

func isNamespaceChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || isSeparator(c)
}

func isSeparator(c byte) bool {
	return c == '_' || c == '-' || c == '.'
}

// IsVersion reports whether s is a MAJOR.MINOR.PATCH semantic version with
// optional pre-release and build metadata.
func IsVersion(s string) bool {
	return checkVersion(s) == ""
}

// ValidateVersion returns a MALFORMED_IDENTIFIER error if s is not a
// semantic version.
func ValidateVersion(s string) error {
	if reason := checkVersion(s); reason != "" {
		return malformed(KindVersion, s, reason)
	}
	return nil
}

func checkVersion(s string) string {
	if s == "" {
		return "must not be empty"
	}
	if s[0] == 'v' {
		return "must not carry a 'v' prefix"
	}
	v := "v" + s
	if !semver.IsValid(v) {
		return "is not a semantic version"
	}
	// semver accepts the v1 and v1.2 shorthands; a pack version spells out
	// all three components.
	if semver.Canonical(v)+semver.Build(v) != v {
		return "must have exactly three numeric components"
	}
	return ""
}

// ValidateSourcePath checks that p is a clean slash-separated path relative
// to a pack root.
func ValidateSourcePath(p string) error {
	reason := ""
	switch {
	case p == "":
		reason = "must not be empty"
	case strings.ContainsRune(p, 0):
		reason = "must not contain NUL bytes"
	case strings.Contains(p, `\`):
		reason = "must use '/' as separator"
	case strings.HasPrefix(p, "/"):
		reason = "must be relative to the pack root"
	default:
		for _, seg := range strings.Split(p, "/") {
			if seg == "" || seg == "." || seg == ".." {
				reason = "must not contain empty, '.' or '..' segments"
				break
			}
		}
	}
	if reason != "" {
		return malformed(KindPath, p, reason)
	}
	return nil
}

func malformed(kind, value, reason string) error {
	return errors.Newf(errors.ErrMalformedIdentifier, "invalid %s %q: %s", kind, value, reason).
		WithDetail("kind", kind).
		WithDetail("value", value)
}
