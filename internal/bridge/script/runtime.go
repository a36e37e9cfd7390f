package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/GriffinCanCode/modhost/internal/bridge/artifact"
	"github.com/dop251/goja"
)

var (
	errMainNotSettled = errors.New("main promise never settled")
	errAsyncPending   = errors.New("top-level promise never settled")
)

// Runtime executes JavaScript artifacts in a fresh goja VM per run.
type Runtime struct {
	config Config
}

// New creates a script runtime
func New(config Config) *Runtime {
	return &Runtime{config: config}
}

// Run compiles the artifact, runs its top level and then, if defined,
// calls main(argv). A promise returned by either must settle before the
// run ends.
func (r *Runtime) Run(ctx context.Context, art *artifact.Artifact, inv *bridge.Invocation) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	source, err := art.Text()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", bridge.ErrCompile, err)
	}

	program, err := goja.Compile(art.Location, source, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", bridge.ErrCompile, err)
	}

	vm := goja.New()
	if r.config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}
	if err := r.setupGlobals(vm, inv); err != nil {
		return 0, err
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := vm.RunProgram(program)
	if err != nil {
		return r.outcome(err)
	}
	if err := settled(val, errAsyncPending); err != nil {
		return 0, err
	}

	mainFn, ok := goja.AssertFunction(vm.Get("main"))
	if !ok {
		return 0, nil
	}

	val, err = mainFn(goja.Undefined(), vm.Get("argv"))
	if err != nil {
		return r.outcome(err)
	}
	return 0, settled(val, errMainNotSettled)
}

// outcome maps a goja error to an exit code or a run error.
func (r *Runtime) outcome(err error) (int, error) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		switch v := interrupted.Value().(type) {
		case exitSignal:
			return v.code, nil
		case error:
			return 0, fmt.Errorf("interrupted: %w", v)
		}
		return 0, fmt.Errorf("interrupted: %v", interrupted.Value())
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return 0, fmt.Errorf("uncaught exception: %s", exception.Value().String())
	}
	return 0, err
}

// settled checks a promise result. Non-promise values are ignored.
func settled(val goja.Value, pending error) error {
	if val == nil {
		return nil
	}
	promise, ok := val.Export().(*goja.Promise)
	if !ok {
		return nil
	}

	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return nil
	case goja.PromiseStateRejected:
		return fmt.Errorf("promise rejected: %s", promise.Result().String())
	default:
		return pending
	}
}
