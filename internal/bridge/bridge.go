package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/GriffinCanCode/modhost/internal/bridge/artifact"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/config"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modhost/internal/shared/id"
	"go.uber.org/zap"
)

// Request names the command and arguments for one run.
type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// Argv returns [Command] followed by Args as a new slice.
func (r Request) Argv() []string {
	argv := make([]string, 0, len(r.Args)+1)
	argv = append(argv, r.Command)
	return append(argv, r.Args...)
}

// Bridge loads a module, runs it with an argument vector and returns its
// captured output. Each call owns its artifact, runtime instance, capture
// and decoder state, so concurrent calls never share output.
type Bridge struct {
	loader   artifact.Loader
	runtimes Runtimes

	module   string
	noOutput string
	timeout  time.Duration
	slots    chan struct{}

	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithModuleName labels logs and metrics.
func WithModuleName(name string) Option {
	return func(b *Bridge) {
		if name != "" {
			b.module = name
		}
	}
}

// WithNoOutputMessage sets the text returned when a run writes nothing.
func WithNoOutputMessage(msg string) Option {
	return func(b *Bridge) {
		if msg != "" {
			b.noOutput = msg
		}
	}
}

// WithTimeout bounds each run. Zero disables the watchdog.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.timeout = d }
}

// WithMaxConcurrent bounds in-flight runs.
func WithMaxConcurrent(n int) Option {
	return func(b *Bridge) {
		if n < 1 {
			n = 1
		}
		b.slots = make(chan struct{}, n)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics records execution metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// WithTracer opens spans for load and run.
func WithTracer(t *tracing.Tracer) Option {
	return func(b *Bridge) { b.tracer = t }
}

// New creates a bridge over loader, dispatching artifacts to runtimes by kind.
func New(loader artifact.Loader, runtimes Runtimes, opts ...Option) *Bridge {
	b := &Bridge{
		loader:   loader,
		runtimes: runtimes,
		module:   "module",
		noOutput: config.DefaultNoOutputMessage,
		slots:    make(chan struct{}, 4),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NoOutputMessage returns the empty-result substitute.
func (b *Bridge) NoOutputMessage() string {
	return b.noOutput
}

// Execute runs command with args and returns the module's decoded output.
// Load failures are *LoadError, run failures *ExecError. A non-zero exit
// code is not an error.
func (b *Bridge) Execute(ctx context.Context, command string, args []string) (string, error) {
	return b.Stream(ctx, Request{Command: command, Args: args}, nil)
}

// Stream is Execute with fn receiving each decoded chunk as it is written.
// fn runs on the module's goroutine and must not block for long.
func (b *Bridge) Stream(ctx context.Context, req Request, fn func(Chunk)) (text string, err error) {
	select {
	case b.slots <- struct{}{}:
		defer func() { <-b.slots }()
	case <-ctx.Done():
		return "", &ExecError{Command: req.Command, Err: ctx.Err()}
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	invID := id.NewInvocationID()
	log := b.logger.Invocation(invID.String(), req.Command)
	timer := monitoring.StartExecution(b.metrics, b.module)

	defer func() {
		elapsed := timer.Stop(statusOf(err))
		if err != nil {
			log.Warn("invocation failed", zap.Duration("duration", elapsed), zap.Error(err))
			return
		}
		log.Info("invocation finished", zap.Duration("duration", elapsed), zap.Int("bytes", len(text)))
	}()

	art, err := b.load(ctx)
	if err != nil {
		return "", err
	}
	log.Debug("artifact loaded",
		zap.String("strategy", string(art.Strategy)),
		zap.String("kind", art.Kind.String()),
		zap.Int("size", art.Size()),
	)

	rt, ok := b.runtimes[art.Kind]
	if !ok || rt == nil {
		return "", &LoadError{Location: art.Location, Err: fmt.Errorf("%w: %s", ErrNoRuntime, art.Kind)}
	}

	capture := NewCapture(ctx, fn, b.metrics)
	inv := &Invocation{
		ID:     invID,
		Argv:   req.Argv(),
		Stdout: capture.Stdout(),
		Stderr: capture.Stderr(),
		Log:    capture.Log,
	}

	code, err := b.run(ctx, rt, art, inv, capture)
	if err != nil {
		if errors.Is(err, ErrCompile) {
			return "", &LoadError{Location: art.Location, Err: err}
		}
		return "", &ExecError{Command: req.Command, Err: err}
	}

	if code != 0 {
		log.Info("module exited with non-zero code", zap.Int("exit_code", code))
		b.metrics.RecordExitCode(b.module, code)
	}

	text = capture.Text()
	if text == "" {
		return b.noOutput, nil
	}
	return text, nil
}

func (b *Bridge) load(ctx context.Context) (*artifact.Artifact, error) {
	span, ctx := b.tracer.StartSpan(ctx, "artifact.load")
	art, err := b.loader.Load(ctx)
	b.tracer.End(span, err)
	if err != nil {
		return nil, &LoadError{Location: locationOf(b.loader), Err: err}
	}
	return art, nil
}

// run executes the entry point. The capture is closed on every path,
// including a runtime panic, before the result is inspected.
func (b *Bridge) run(ctx context.Context, rt Runtime, art *artifact.Artifact, inv *Invocation, capture *Capture) (code int, err error) {
	span, ctx := b.tracer.StartSpan(ctx, "module.run")
	span.SetTag("kind", art.Kind.String())

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("runtime panic",
				zap.String("invocation_id", inv.ID.String()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("runtime panic: %v", r)
		}
		if cerr := capture.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(ctxErr, err)
		}
		b.tracer.End(span, err)
	}()

	return rt.Run(ctx, art, inv)
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return monitoring.StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return monitoring.StatusCancelled
	case IsLoadError(err):
		return monitoring.StatusLoadError
	default:
		return monitoring.StatusExecError
	}
}

func locationOf(l artifact.Loader) string {
	if named, ok := l.(interface{ Location() string }); ok {
		return named.Location()
	}
	return ""
}
