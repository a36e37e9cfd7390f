package artifact

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrContentType       = errors.New("unexpected content type")
	ErrTooLarge          = errors.New("artifact exceeds size limit")
	ErrUnknownKind       = errors.New("unrecognised artifact kind")
	ErrEmpty             = errors.New("artifact is empty")
	ErrUnsupportedScheme = errors.New("unsupported artifact location scheme")
)

// Kind identifies which runtime can execute an artifact.
type Kind int

const (
	KindUnknown Kind = iota
	KindWasm
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindWasm:
		return "wasm"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Strategy names how an artifact was obtained.
type Strategy string

const (
	StrategyStreaming Strategy = "streaming"
	StrategyBuffered  Strategy = "buffered"
	StrategyFile      Strategy = "file"
)

// Artifact is a loaded module ready to be compiled by a runtime.
type Artifact struct {
	Location    string
	Kind        Kind
	Strategy    Strategy
	ContentType string
	Source      []byte
}

// Size returns the artifact length in bytes.
func (a *Artifact) Size() int {
	return len(a.Source)
}

// Loader produces a fresh artifact for each invocation.
type Loader interface {
	Load(ctx context.Context) (*Artifact, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*Artifact, error)

func (f LoaderFunc) Load(ctx context.Context) (*Artifact, error) {
	return f(ctx)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected response status %s", e.Status)
	}
	return fmt.Sprintf("unexpected response status %d", e.Code)
}
