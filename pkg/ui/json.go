package ui

import (
	"encoding/json"
	"io"

	"github.com/TouchController/E1epack/pkg/build"
	"github.com/TouchController/E1epack/pkg/errors"
)

// jsonRenderer renders machine-readable output
type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSONRenderer(out io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return &jsonRenderer{encoder: encoder}
}

// RenderPlan implements Renderer
func (r *jsonRenderer) RenderPlan(plan *build.Plan) error {
	return r.encoder.Encode(Listings(plan))
}

// RenderReport implements Renderer
func (r *jsonRenderer) RenderReport(report *build.Report) error {
	return r.encoder.Encode(report)
}

// RenderError implements Renderer
func (r *jsonRenderer) RenderError(err error) error {
	return r.encoder.Encode(map[string]interface{}{
		"error":   err.Error(),
		"code":    errors.GetErrorCode(err),
		"details": errors.GetErrorDetails(err),
	})
}

// RenderMessage implements Renderer
func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
