// Package main is modrun, a command line front end to the execution bridge.
//
// Commands:
//   - exec: run the module with raw arguments
//   - query: build the arguments from form-style flags and run
//   - render: convert ANSI-coloured stdin to HTML
//
// The module location, argv[0] and timeout follow the server's
// environment variables and can be overridden with flags.
package main
