/*
Package bridge runs an externally supplied module and captures its output.

One call to Execute is one invocation:

	load artifact -> create capture -> run entry point -> close capture -> return text

The argument vector is [command] followed by args, passed verbatim. Output
written to stdout, stderr and the host log function lands in a single
buffer in arrival order, each byte channel decoded as UTF-8 incrementally.
The capture is injected into the runtime through an Invocation rather than
by swapping process-wide handlers, and it is closed on every exit path;
writes that arrive afterwards fail with ErrCaptureClosed.

An empty result is replaced with the configured no-output message. Load
failures are reported as *LoadError, failures of the running module as
*ExecError. Rendering the returned text is left to the caller.

# Usage

	loader, _ := artifact.NewLoader(cfg.Module.URL)
	b := bridge.New(loader, bridge.Runtimes{
		artifact.KindWasm:   wasm.New(wasm.Config{}),
		artifact.KindScript: script.New(script.DefaultConfig()),
	}, bridge.WithMaxConcurrent(4))

	out, err := b.Execute(ctx, "cvrf-review", []string{"fortinet", "affected"})
*/
package bridge
