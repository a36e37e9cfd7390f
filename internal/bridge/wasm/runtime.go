package wasm

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/GriffinCanCode/modhost/internal/bridge/artifact"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

const (
	entryPoint     = "_start"
	hostModuleName = "env"
)

var errNoEntryPoint = errors.New("module exports no _start function")

// Config defines WASI runtime limits
type Config struct {
	// MemoryLimitPages caps linear memory in 64KiB pages; 0 keeps the
	// wazero default of 65536 pages.
	MemoryLimitPages uint32
}

// Runtime executes WASI command modules (GOOS=wasip1 builds and similar).
// A new wazero runtime is created per run; compiled code is shared through
// a compilation cache.
type Runtime struct {
	config Config
	cache  wazero.CompilationCache
}

// New creates a WASI runtime
func New(config Config) *Runtime {
	return &Runtime{
		config: config,
		cache:  wazero.NewCompilationCache(),
	}
}

// Close releases the compilation cache.
func (r *Runtime) Close(ctx context.Context) error {
	return r.cache.Close(ctx)
}

// Run instantiates the module with the invocation's argv and output
// writers, then calls _start. proc_exit codes are returned, not errors.
func (r *Runtime) Run(ctx context.Context, art *artifact.Artifact, inv *bridge.Invocation) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rc := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithCompilationCache(r.cache)
	if r.config.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(r.config.MemoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rc)
	defer rt.Close(context.Background())

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return 0, fmt.Errorf("%w: wasi: %v", bridge.ErrCompile, err)
	}
	if err := instantiateHost(ctx, rt, inv); err != nil {
		return 0, fmt.Errorf("%w: host module: %v", bridge.ErrCompile, err)
	}

	compiled, err := rt.CompileModule(ctx, art.Source)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", bridge.ErrCompile, err)
	}

	mc := wazero.NewModuleConfig().
		WithName("").
		WithArgs(inv.Argv...).
		WithStdout(inv.Stdout).
		WithStderr(inv.Stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep().
		WithRandSource(rand.Reader).
		WithStartFunctions()

	mod, err := rt.InstantiateModule(ctx, compiled, mc)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", bridge.ErrCompile, err)
	}
	defer mod.Close(context.Background())

	start := mod.ExportedFunction(entryPoint)
	if start == nil {
		return 0, fmt.Errorf("%w: %v", bridge.ErrCompile, errNoEntryPoint)
	}

	_, err = start.Call(ctx)
	return exitOutcome(ctx, err)
}

// exitOutcome maps the result of _start to an exit code or error.
func exitOutcome(ctx context.Context, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, fmt.Errorf("interrupted: %w", ctxErr)
	}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.ExitCode()), nil
	}
	return 0, err
}

// instantiateHost exports env.log(ptr, len), forwarding a UTF-8 string
// from guest memory to the invocation log channel.
func instantiateHost(ctx context.Context, rt wazero.Runtime, inv *bridge.Invocation) error {
	_, err := rt.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, ptr, length uint32) {
			if inv.Log == nil {
				return
			}
			data, ok := m.Memory().Read(ptr, length)
			if !ok {
				panic(fmt.Errorf("log: range [%d, %d) out of memory bounds", ptr, uint64(ptr)+uint64(length)))
			}
			_ = inv.Log(string(data))
		}).
		Export("log").
		Instantiate(ctx)
	return err
}
