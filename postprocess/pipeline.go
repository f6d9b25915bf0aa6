// Package postprocess turns a saved image's path into the text that gets
// pasted.
package postprocess

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Names of the built-in steps.
const (
	StepTerminalPath = "terminal-path"
	StepQuoteSpaces  = "quote-spaces"
)

// Processor rewrites the path text.
type Processor func(ctx context.Context, text string) (string, error)

// Step is a named Processor.
type Step struct {
	Name string
	Run  Processor
}

// Result is the final text plus the steps that altered it, in order.
type Result struct {
	Text    string
	Changed []string
}

// ChangedBy reports whether the named step altered the text.
func (r Result) ChangedBy(name string) bool {
	return slices.Contains(r.Changed, name)
}

// Pipeline applies its steps in order. It is fixed at construction and safe
// for concurrent use as long as the steps are.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Process stops at the first failing step. The error names that step and the
// returned Result holds the text as it was before the step ran.
func (p *Pipeline) Process(ctx context.Context, path string) (Result, error) {
	res := Result{Text: path}
	for _, step := range p.steps {
		out, err := step.Run(ctx, res.Text)
		if err != nil {
			slog.Error("Path step failed", "step", step.Name, "error", err)
			return res, fmt.Errorf("%s: %w", step.Name, err)
		}
		if out != res.Text {
			res.Changed = append(res.Changed, step.Name)
			res.Text = out
		}
	}
	return res, nil
}
