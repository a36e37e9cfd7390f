/*
Package artifact loads module artifacts for the execution bridge.

Remote artifacts are fetched with two strategies. The streaming strategy
issues one cache-busted GET and consumes the body as it arrives; it requires
a declared Content-Type of application/wasm or a JavaScript media type. Any
failure (transport error, non-2xx status, wrong content type, oversized
body) falls back to the buffered strategy: a new cache-busted GET through a
retrying transport whose whole body is held in memory and whose kind is
sniffed from the bytes. Both attempts run behind a circuit breaker.

Local artifacts (file:// URLs or plain paths) are read from disk on every
load without cache busting.

Every Load returns a fresh Artifact; nothing is cached between invocations.
*/
package artifact
