package bridge

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Channel names an output stream of a module.
type Channel string

const (
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
	ChannelLog    Channel = "log"
)

// Chunk is a piece of decoded output delivered while a module runs.
type Chunk struct {
	Channel Channel `json:"channel"`
	Text    string  `json:"text"`
}

// Capture is the output sink of one invocation. Byte channels are decoded
// as UTF-8 incrementally, so a character split across writes is emitted
// whole once its last byte arrives. All channels append to one buffer in
// arrival order.
//
// After Close every write fails with ErrCaptureClosed.
type Capture struct {
	ctx      context.Context
	observer func(Chunk)
	metrics  *monitoring.Metrics

	mu     sync.Mutex
	buf    strings.Builder
	closed bool

	stdout *channelWriter
	stderr *channelWriter
}

// NewCapture creates a capture bound to ctx. Writes fail with the context's
// error once it is done. observer, when non-nil, receives every decoded
// chunk in order; it is called with the capture locked and must not write
// back into it.
func NewCapture(ctx context.Context, observer func(Chunk), metrics *monitoring.Metrics) *Capture {
	c := &Capture{
		ctx:      ctx,
		observer: observer,
		metrics:  metrics,
	}
	c.stdout = c.newChannel(ChannelStdout)
	c.stderr = c.newChannel(ChannelStderr)
	return c
}

func (c *Capture) newChannel(ch Channel) *channelWriter {
	w := &channelWriter{capture: c, channel: ch}
	w.decoder = transform.NewWriter(sinkFunc(func(p []byte) {
		c.appendLocked(ch, string(p))
	}), unicode.UTF8.NewDecoder())
	return w
}

// Stdout returns the standard output writer.
func (c *Capture) Stdout() io.Writer { return c.stdout }

// Stderr returns the standard error writer.
func (c *Capture) Stderr() io.Writer { return c.stderr }

// Log appends a host-level log line. A newline is added.
func (c *Capture) Log(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writableLocked(); err != nil {
		return err
	}
	line := msg + "\n"
	c.metrics.AddCapturedBytes(string(ChannelLog), len(line))
	c.appendLocked(ChannelLog, line)
	return nil
}

// Close flushes every channel decoder and seals the capture. Incomplete
// trailing sequences become U+FFFD. Close is idempotent.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	errOut := c.stdout.decoder.Close()
	errErr := c.stderr.decoder.Close()
	if errOut != nil {
		return errOut
	}
	return errErr
}

// Closed reports whether Close has run.
func (c *Capture) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Text returns everything decoded so far.
func (c *Capture) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

func (c *Capture) writableLocked() error {
	if c.closed {
		return ErrCaptureClosed
	}
	if err := c.ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (c *Capture) appendLocked(ch Channel, text string) {
	if text == "" {
		return
	}
	c.buf.WriteString(text)
	if c.observer != nil {
		c.observer(Chunk{Channel: ch, Text: text})
	}
}

// channelWriter feeds one byte channel through its own decoder.
type channelWriter struct {
	capture *Capture
	channel Channel
	decoder *transform.Writer
}

func (w *channelWriter) Write(p []byte) (int, error) {
	c := w.capture
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writableLocked(); err != nil {
		return 0, err
	}
	c.metrics.AddCapturedBytes(string(w.channel), len(p))
	return w.decoder.Write(p)
}

type sinkFunc func(p []byte)

func (f sinkFunc) Write(p []byte) (int, error) {
	f(p)
	return len(p), nil
}
