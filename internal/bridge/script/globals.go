package script

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/dop251/goja"
)

// setupGlobals installs the host capability table for one invocation.
func (r *Runtime) setupGlobals(vm *goja.Runtime, inv *bridge.Invocation) error {
	// Remove module-system and process access
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	argv := make([]interface{}, len(inv.Argv))
	for i, a := range inv.Argv {
		argv[i] = a
	}
	if err := vm.Set("argv", vm.NewArray(argv...)); err != nil {
		return err
	}

	if err := vm.Set("stdout", r.channel(vm, inv.Stdout)); err != nil {
		return err
	}
	if err := vm.Set("stderr", r.channel(vm, inv.Stderr)); err != nil {
		return err
	}

	if r.config.EnableConsole {
		console := vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error", "debug"} {
			if err := console.Set(level, r.consoleFunc(inv)); err != nil {
				return err
			}
		}
		if err := vm.Set("console", console); err != nil {
			return err
		}
	}

	if err := vm.Set("exit", func(call goja.FunctionCall) goja.Value {
		code := 0
		if len(call.Arguments) > 0 {
			code = int(call.Argument(0).ToInteger())
		}
		vm.Interrupt(exitSignal{code: code})
		return goja.Undefined()
	}); err != nil {
		return err
	}

	// Timers never fire
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := vm.Set(name, noop); err != nil {
			return err
		}
	}

	return nil
}

// channel builds a {write(data)} object over w.
func (r *Runtime) channel(vm *goja.Runtime, w io.Writer) *goja.Object {
	obj := vm.NewObject()
	_ = obj.Set("write", func(call goja.FunctionCall) goja.Value {
		data, err := toBytes(call.Argument(0))
		if err != nil {
			panic(vm.NewTypeError(err.Error()))
		}
		n, err := w.Write(data)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(n)
	})
	return obj
}

func (r *Runtime) consoleFunc(inv *bridge.Invocation) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		if inv.Log != nil {
			_ = inv.Log(strings.Join(parts, " "))
		}
		return goja.Undefined()
	}
}

// toBytes accepts Uint8Array, ArrayBuffer, an array of byte values or a string.
func toBytes(v goja.Value) ([]byte, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	switch data := v.Export().(type) {
	case []byte:
		return data, nil
	case goja.ArrayBuffer:
		return data.Bytes(), nil
	case string:
		return []byte(data), nil
	case []interface{}:
		out := make([]byte, len(data))
		for i, item := range data {
			b, err := toByte(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("write: unsupported data type %T", data)
	}
}

func toByte(item interface{}) (byte, error) {
	switch n := item.(type) {
	case int64:
		if n < 0 || n > math.MaxUint8 {
			return 0, fmt.Errorf("byte value %d out of range", n)
		}
		return byte(n), nil
	case float64:
		if n < 0 || n > math.MaxUint8 || n != math.Trunc(n) {
			return 0, fmt.Errorf("byte value %v out of range", n)
		}
		return byte(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", item)
	}
}
