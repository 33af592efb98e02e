// Package ui renders build plans, build reports and errors in terminal,
// plain text or JSON form.
package ui

import (
	"io"
	"os"

	"github.com/TouchController/E1epack/pkg/build"
	"github.com/TouchController/E1epack/pkg/errors"
)

// Renderer is implemented by every output format
type Renderer interface {
	// RenderPlan renders the packs of a plan with their closures
	RenderPlan(plan *build.Plan) error
	// RenderReport renders the summary of a build
	RenderReport(report *build.Report) error
	// RenderError renders an error with its code and details
	RenderError(err error) error
	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format writing to output
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return newTextRenderer(output, true), nil
	case FormatText:
		return newTextRenderer(output, false), nil
	case FormatJSON:
		return newJSONRenderer(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown output format %v", format)
	}
}
