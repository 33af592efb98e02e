// Test Type: Unit Test
// Description: Tests for identifier grammars

package ids_test

import (
	"strings"
	"testing"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePackID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "simple", input: "core", valid: true},
		{name: "digits_and_separators", input: "touch_controller-2.x", valid: true},
		{name: "single_char", input: "a", valid: true},
		{name: "max_length", input: strings.Repeat("a", 255), valid: true},
		{name: "empty", input: "", valid: false},
		{name: "too_long", input: strings.Repeat("a", 256), valid: false},
		{name: "leading_hyphen", input: "-bad", valid: false},
		{name: "leading_dot", input: ".bad", valid: false},
		{name: "leading_underscore", input: "_bad", valid: false},
		{name: "trailing_hyphen", input: "bad-", valid: false},
		{name: "trailing_dot", input: "bad.", valid: false},
		{name: "double_dot", input: "a..b", valid: false},
		{name: "uppercase", input: "Core", valid: false},
		{name: "colon", input: "ns:core", valid: false},
		{name: "slash", input: "a/b", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ids.ValidatePackID(tt.input)
			assert.Equal(t, tt.valid, ids.IsPackID(tt.input))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedIdentifier))
			details := errors.GetErrorDetails(err)
			assert.Equal(t, ids.KindPackID, details["kind"])
			assert.Equal(t, tt.input, details["value"])
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"0.0.0", true},
		{"1.2.3", true},
		{"10.20.30", true},
		{"1.0.0-alpha", true},
		{"1.0.0-alpha.1", true},
		{"1.0.0-x-y-z.--", true},
		{"1.0.0+build.5", true},
		{"1.0.0-rc.1+exp.sha.5114f85", true},
		{"1.2.03", false},
		{"01.2.3", false},
		{"1.2", false},
		{"1", false},
		{"1.2.3.4", false},
		{"v1.2.3", false},
		{"", false},
		{"1.2.3-", false},
		{"1.2.3+", false},
		{"1.2.3-a..b", false},
		{"1.2.3-a_b", false},
		{"a.b.c", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, ids.IsVersion(tt.input))
			err := ids.ValidateVersion(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedIdentifier))
			}
		})
	}
}

func TestValidateSourcePath(t *testing.T) {
	valid := []string{
		"pack.mcmeta",
		"data/p/function/foo.mcfunction",
		"data/p/tags/function/load.json",
	}
	for _, p := range valid {
		assert.NoError(t, ids.ValidateSourcePath(p), p)
	}

	invalid := []string{
		"",
		"/abs/path",
		"data/../escape",
		"data//double",
		"./data/p",
		`data\p\x`,
		"trailing/",
		"nul\x00byte",
	}
	for _, p := range invalid {
		err := ids.ValidateSourcePath(p)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedIdentifier), "%q", p)
	}
}
