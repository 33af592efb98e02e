package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/TouchController/E1epack/pkg/build"
	"github.com/TouchController/E1epack/pkg/errors"
)

// textRenderer renders human-readable output, styled or plain
type textRenderer struct {
	out    io.Writer
	styles Styles
	styled bool
}

func newTextRenderer(out io.Writer, styled bool) *textRenderer {
	r := &textRenderer{out: out, styled: styled}
	if styled {
		r.styles = DefaultStyles()
	}
	return r
}

func (r *textRenderer) style(name, s string) string {
	if !r.styled {
		return s
	}
	return r.styles.Get(name).Render(s)
}

func (r *textRenderer) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(r.out, format, args...)
	return err
}

// RenderPlan implements Renderer
func (r *textRenderer) RenderPlan(plan *build.Plan) error {
	if len(plan.Packs) == 0 {
		return r.RenderMessage("No packs found")
	}
	if err := r.printf("%s\n", r.style(StyleHeader, fmt.Sprintf("%d pack(s) in %d level(s)", len(plan.Packs), len(plan.Levels)))); err != nil {
		return err
	}
	for _, l := range Listings(plan) {
		if err := r.printf("%s %s\n", r.style(StylePackID, l.ID), r.style(StyleVersion, l.Version)); err != nil {
			return err
		}
		if len(l.Dependencies) > 0 {
			if err := r.printf("  depends on: %s\n", strings.Join(l.Dependencies, ", ")); err != nil {
				return err
			}
		}
		if len(l.Prebuilt) > 0 {
			if err := r.printf("  prebuilt:   %s\n", strings.Join(l.Prebuilt, ", ")); err != nil {
				return err
			}
		}
		if err := r.printf("  closure:    %s\n", r.style(StyleClosure, strings.Join(l.Closure, ", "))); err != nil {
			return err
		}
		if err := r.printf("  files:      %d (%d aliased)\n", l.Files, l.Aliased); err != nil {
			return err
		}
	}
	return nil
}

// RenderReport implements Renderer
func (r *textRenderer) RenderReport(report *build.Report) error {
	title := fmt.Sprintf("Built %d pack(s) in %s", len(report.Packs), round(report.Duration))
	if report.DryRun {
		title = fmt.Sprintf("Would build %d pack(s)", len(report.Packs))
	}
	if err := r.printf("%s\n", r.style(StyleHeader, title)); err != nil {
		return err
	}

	for _, p := range report.Packs {
		mark := r.style(StyleSuccess, "✓")
		if report.DryRun {
			mark = r.style(StyleMuted, "•")
		}
		line := fmt.Sprintf("%s %s %s  %d file(s)", mark, r.style(StylePackID, p.ID), r.style(StyleVersion, p.Version), p.Files)
		if p.Aliased > 0 {
			line += fmt.Sprintf(", %d aliased", p.Aliased)
		}
		if !report.DryRun {
			line += fmt.Sprintf(", %d entries, %s", p.Entries, round(p.Duration))
		}
		if err := r.printf("%s\n", line); err != nil {
			return err
		}
		if err := r.printf("    %s\n", r.style(StylePath, p.Archive)); err != nil {
			return err
		}
	}
	return r.printf("%s\n", r.style(StyleMuted, "build "+report.BuildID))
}

// RenderError implements Renderer
func (r *textRenderer) RenderError(err error) error {
	code := errors.GetErrorCode(err)
	if err := r.printf("%s %s\n", r.style(StyleError, "Error:"), err.Error()); err != nil {
		return err
	}
	details := errors.GetErrorDetails(err)
	if code == errors.ErrUnknown || len(details) == 0 {
		return nil
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := r.printf("  %s %v\n", r.style(StyleMuted, k+":"), details[k]); err != nil {
			return err
		}
	}
	return nil
}

// RenderMessage implements Renderer
func (r *textRenderer) RenderMessage(msg string) error {
	return r.printf("%s\n", msg)
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
