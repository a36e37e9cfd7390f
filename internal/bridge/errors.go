package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrCaptureClosed is returned by writes that arrive after the
	// invocation that owned the capture has finished.
	ErrCaptureClosed = errors.New("output capture closed")

	// ErrNoRuntime means no registered runtime can execute the artifact.
	ErrNoRuntime = errors.New("no runtime for artifact kind")

	// ErrCompile is wrapped by runtimes when an artifact cannot be
	// compiled or instantiated. The bridge reports it as a LoadError.
	ErrCompile = errors.New("artifact failed to compile")
)

// LoadError reports that the module could not be obtained or instantiated.
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("load module: %v", e.Err)
	}
	return fmt.Sprintf("load module %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ExecError reports that the module's entry point failed during its run.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is or wraps a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsExecError reports whether err is or wraps an ExecError.
func IsExecError(err error) bool {
	var ee *ExecError
	return errors.As(err, &ee)
}
