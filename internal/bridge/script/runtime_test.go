package script

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/GriffinCanCode/modhost/internal/bridge/artifact"
	"github.com/GriffinCanCode/modhost/internal/shared/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	text string
	code int
	err  error
}

func runScript(ctx context.Context, src string, argv ...string) outcome {
	capture := bridge.NewCapture(ctx, nil, nil)
	inv := &bridge.Invocation{
		ID:     id.NewInvocationID(),
		Argv:   argv,
		Stdout: capture.Stdout(),
		Stderr: capture.Stderr(),
		Log:    capture.Log,
	}
	art := &artifact.Artifact{
		Location: "main.js",
		Kind:     artifact.KindScript,
		Source:   []byte(src),
	}

	code, err := New(DefaultConfig()).Run(ctx, art, inv)
	_ = capture.Close()
	return outcome{text: capture.Text(), code: code, err: err}
}

func TestRuntimeOutput(t *testing.T) {
	tests := []struct {
		name   string
		script string
		argv   []string
		want   string
	}{
		{
			name:   "argv reaches the module verbatim",
			script: `stdout.write(argv.join("|"))`,
			argv:   []string{"cvrf-review", "fortinet", "--product", "Forti OS"},
			want:   "cvrf-review|fortinet|--product|Forti OS",
		},
		{
			name:   "string write",
			script: `stdout.write("plain\n")`,
			want:   "plain\n",
		},
		{
			name:   "split multi-byte character across writes",
			script: `stdout.write([0x61, 0xE2, 0x82]); stdout.write([0xAC, 0x62])`,
			want:   "a€b",
		},
		{
			name:   "uint8array",
			script: `stdout.write(new Uint8Array([104, 105]))`,
			want:   "hi",
		},
		{
			name:   "arraybuffer",
			script: `stdout.write(new Uint8Array([111, 107]).buffer)`,
			want:   "ok",
		},
		{
			name:   "stderr shares the buffer",
			script: `stdout.write("out "); stderr.write("err")`,
			want:   "out err",
		},
		{
			name:   "console joins arguments",
			script: `console.log("found", 3, "advisories"); console.error("warn")`,
			want:   "found 3 advisories\nwarn\n",
		},
		{
			name:   "module system removed",
			script: `stdout.write(typeof require + " " + typeof process)`,
			want:   "undefined undefined",
		},
		{
			name:   "main receives argv",
			script: `function main(args) { stdout.write(args[1]) }`,
			argv:   []string{"cvrf-review", "fortinet"},
			want:   "fortinet",
		},
		{
			name:   "async main settles",
			script: `async function main() { await null; stdout.write("done") }`,
			want:   "done",
		},
		{
			name:   "silent module",
			script: `var x = 1 + 1`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runScript(context.Background(), tt.script, tt.argv...)
			require.NoError(t, got.err)
			assert.Equal(t, 0, got.code)
			assert.Equal(t, tt.want, got.text)
		})
	}
}

func TestRuntimeExit(t *testing.T) {
	got := runScript(context.Background(), `stdout.write("before"); exit(3); stdout.write("after")`)
	require.NoError(t, got.err)
	assert.Equal(t, 3, got.code)
	assert.Equal(t, "before", got.text)

	got = runScript(context.Background(), `function main() { exit(2) }`)
	require.NoError(t, got.err)
	assert.Equal(t, 2, got.code)
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name        string
		script      string
		compile     bool
		errContains string
	}{
		{name: "syntax error", script: `function (`, compile: true},
		{name: "uncaught throw", script: `throw new Error("boom")`, errContains: "boom"},
		{name: "main throws", script: `function main() { throw "bad input" }`, errContains: "bad input"},
		{name: "rejected main", script: `async function main() { throw new Error("nope") }`, errContains: "nope"},
		{name: "pending main", script: `function main() { return new Promise(function () {}) }`, errContains: "never settled"},
		{name: "bad write payload", script: `stdout.write({})`, errContains: "unsupported"},
		{name: "byte out of range", script: `stdout.write([300])`, errContains: "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runScript(context.Background(), tt.script)
			require.Error(t, got.err)
			assert.Equal(t, tt.compile, errors.Is(got.err, bridge.ErrCompile))
			if tt.errContains != "" {
				assert.Contains(t, got.err.Error(), tt.errContains)
			}
		})
	}
}

func TestRuntimeCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := runScript(ctx, `stdout.write("spinning"); for (;;) {}`)

	require.Error(t, got.err)
	assert.ErrorIs(t, got.err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRuntimeAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := runScript(ctx, `stdout.write("never")`)
	assert.ErrorIs(t, got.err, context.Canceled)
	assert.Empty(t, got.text)
}
