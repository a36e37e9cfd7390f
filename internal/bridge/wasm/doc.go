// Package wasm runs WebAssembly command modules that target WASI preview1,
// such as Go programs built with GOOS=wasip1. Output channels and argv are
// wired through the bridge invocation; the host module "env" adds a log
// function taking a pointer and length into guest memory.
package wasm
