/*
Package script runs JavaScript module artifacts with goja.

Each run gets a fresh VM with this capability table:

	argv              array of strings, argv[0] is the command
	stdout.write(d)   write bytes (Uint8Array, ArrayBuffer, number array or string)
	stderr.write(d)   same for standard error
	console.log(...)  log line (also info, warn, error, debug)
	exit(code)        stop the run with an exit code

require, process, module and exports are undefined; timers never fire. If the
script defines a global main function it is called with argv after the top
level has run. A promise returned by the top level or by main must be
settled when the call returns.
*/
package script
