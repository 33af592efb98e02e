// Package minify compacts JSON resources before they are archived.
package minify

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"path"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extensions lists the file extensions treated as JSON
var Extensions = []string{".json", ".mcmeta"}

// Applies reports whether name is a JSON resource
func Applies(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Check reports whether src is well-formed JSON, with the same errors as JSON
func Check(src []byte) error {
	_, err := JSON(src)
	return err
}

// JSON removes insignificant whitespace from src. A leading byte order
// mark is dropped.
func JSON(src []byte) ([]byte, error) {
	src = bytes.TrimPrefix(src, utf8BOM)
	var buf bytes.Buffer
	buf.Grow(len(src))
	if err := json.Compact(&buf, src); err != nil {
		e := errors.Wrap(err, errors.ErrInvalidInput, "malformed JSON")
		var syntaxErr *json.SyntaxError
		if stderrors.As(err, &syntaxErr) {
			e = e.WithDetail("offset", syntaxErr.Offset)
		}
		return nil, e
	}
	return buf.Bytes(), nil
}
