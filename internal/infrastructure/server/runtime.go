package server

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/GriffinCanCode/modhost/internal/bridge/artifact"
	"github.com/GriffinCanCode/modhost/internal/bridge/script"
	"github.com/GriffinCanCode/modhost/internal/bridge/wasm"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/config"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/tracing"
)

// Engine is an execution bridge together with the runtimes it owns.
type Engine struct {
	Bridge *bridge.Bridge
	wasm   *wasm.Runtime
}

// NewEngine builds the artifact loader, runtimes and bridge described by
// cfg.Module. tracer and metrics may be nil.
func NewEngine(cfg config.ModuleConfig, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) (*Engine, error) {
	loader, err := artifact.NewLoader(cfg.URL,
		artifact.WithStreaming(cfg.Streaming),
		artifact.WithMaxBytes(cfg.MaxBytes),
		artifact.WithRetries(cfg.FetchRetries, 0, 0),
		artifact.WithLogger(logger.Logger),
		artifact.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("module loader: %w", err)
	}

	wasmRuntime := wasm.New(wasm.Config{})
	runtimes := bridge.Runtimes{
		artifact.KindWasm:   wasmRuntime,
		artifact.KindScript: script.New(script.DefaultConfig()),
	}

	b := bridge.New(loader, runtimes,
		bridge.WithModuleName(cfg.Name),
		bridge.WithNoOutputMessage(cfg.NoOutput),
		bridge.WithTimeout(cfg.Timeout),
		bridge.WithMaxConcurrent(cfg.MaxConcurrent),
		bridge.WithLogger(logger),
		bridge.WithMetrics(metrics),
		bridge.WithTracer(tracer),
	)
	return &Engine{Bridge: b, wasm: wasmRuntime}, nil
}

// Close releases the compiled module cache.
func (e *Engine) Close(ctx context.Context) error {
	return e.wasm.Close(ctx)
}
