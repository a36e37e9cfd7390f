package bridge

import (
	"context"
	"io"

	"github.com/GriffinCanCode/modhost/internal/bridge/artifact"
	"github.com/GriffinCanCode/modhost/internal/shared/id"
)

// Invocation is the context injected into a runtime for one run. It is the
// only path by which module output reaches the host.
type Invocation struct {
	ID     id.InvocationID
	Argv   []string
	Stdout io.Writer
	Stderr io.Writer
	// Log records a host-level log line from the module.
	Log func(msg string) error
}

// Runtime executes a loaded artifact to completion.
//
// Run returns the module's exit code. A compile or instantiation failure
// must wrap ErrCompile. Run must return promptly once ctx is done, with an
// error wrapping ctx.Err().
type Runtime interface {
	Run(ctx context.Context, art *artifact.Artifact, inv *Invocation) (int, error)
}

// RuntimeFunc adapts a function to Runtime.
type RuntimeFunc func(ctx context.Context, art *artifact.Artifact, inv *Invocation) (int, error)

func (f RuntimeFunc) Run(ctx context.Context, art *artifact.Artifact, inv *Invocation) (int, error) {
	return f(ctx, art, inv)
}

// Runtimes maps artifact kinds to the runtime that executes them.
type Runtimes map[artifact.Kind]Runtime
