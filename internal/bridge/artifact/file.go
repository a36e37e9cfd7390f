package artifact

import (
	"context"
	"fmt"
	"os"

	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
)

// FileLoader reads an artifact from the local filesystem on every Load.
type FileLoader struct {
	path     string
	maxBytes int64
	metrics  *monitoring.Metrics
}

// NewFileLoader creates a loader for a local path.
func NewFileLoader(path string, opts ...Option) *FileLoader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &FileLoader{path: path, maxBytes: o.maxBytes, metrics: o.metrics}
}

// Load reads and sniffs the file.
func (l *FileLoader) Load(ctx context.Context) (*Artifact, error) {
	art, err := l.load(ctx)
	l.metrics.RecordArtifactLoad(string(StrategyFile), err, sizeOf(art))
	return art, err
}

func (l *FileLoader) load(ctx context.Context) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	source, err := readLimited(f, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	kind, detected, err := Sniff(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	return &Artifact{
		Location:    l.path,
		Kind:        kind,
		Strategy:    StrategyFile,
		ContentType: detected,
		Source:      source,
	}, nil
}

// Location returns the file path.
func (l *FileLoader) Location() string {
	return l.path
}
