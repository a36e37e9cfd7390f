package advisory

import (
	"context"

	"github.com/GriffinCanCode/modhost/internal/ansi"
	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/microcosm-cc/bluemonday"
)

// Executor runs one module invocation.
type Executor interface {
	Stream(ctx context.Context, req bridge.Request, fn func(bridge.Chunk)) (string, error)
}

// Runner turns form queries into module runs and renders the result.
type Runner struct {
	exec     Executor
	command  string
	presets  Presets
	renderer *ansi.Renderer
	policy   *bluemonday.Policy
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPresets replaces the default severity presets.
func WithPresets(p Presets) RunnerOption {
	return func(r *Runner) { r.presets = p }
}

// WithRenderer replaces the default renderer.
func WithRenderer(rn *ansi.Renderer) RunnerOption {
	return func(r *Runner) { r.renderer = rn }
}

// WithSanitize passes rendered output through ansi.Policy.
func WithSanitize(enabled bool) RunnerOption {
	return func(r *Runner) {
		if enabled {
			r.policy = ansi.Policy()
		} else {
			r.policy = nil
		}
	}
}

// NewRunner creates a Runner invoking command through exec.
func NewRunner(exec Executor, command string, opts ...RunnerOption) *Runner {
	r := &Runner{
		exec:     exec,
		command:  command,
		presets:  DefaultPresets(),
		renderer: ansi.New(ansi.DefaultPalette()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Presets returns the presets queries are resolved against.
func (r *Runner) Presets() Presets {
	return r.presets
}

// Request resolves q into the module request it runs as.
func (r *Runner) Request(q Query) bridge.Request {
	return bridge.Request{
		Command: r.command,
		Args:    q.WithPresetBounds(r.presets).Args(r.presets),
	}
}

// Run executes q and returns the rendered output.
func (r *Runner) Run(ctx context.Context, q Query) (string, error) {
	return r.Stream(ctx, q, nil)
}

// Stream is Run with fn receiving the raw decoded chunks as they arrive.
// Errors are returned as is and never rendered.
func (r *Runner) Stream(ctx context.Context, q Query, fn func(bridge.Chunk)) (string, error) {
	text, err := r.exec.Stream(ctx, r.Request(q), fn)
	if err != nil {
		return "", err
	}
	return r.Render(text), nil
}

// Render converts module output to markup.
func (r *Runner) Render(text string) string {
	out := r.renderer.Render(text)
	if r.policy != nil {
		out = r.policy.Sanitize(out)
	}
	return out
}
