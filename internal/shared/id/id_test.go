package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	assert.NotEqual(t, gen.Generate(), gen.Generate())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestGenerateSortsInCreationOrder(t *testing.T) {
	gen := NewGenerator()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.GenerateString()
	}

	assert.True(t, sort.StringsAreSorted(ids))
}

func TestTypedIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"invocation", NewInvocationID().String(), "inv_"},
		{"request", NewRequestID().String(), "req_"},
		{"connection", NewConnectionID().String(), "conn_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.id, tt.prefix))
			assert.True(t, IsValid(tt.id))
		})
	}
}

func TestParseAndTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	inv := NewInvocationID()

	ts, err := Timestamp(inv.String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Parse("inv_not-a-ulid")
	assert.Error(t, err)
	assert.False(t, IsValid(""))
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := gen.GenerateString()
				mu.Lock()
				seen[s] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 800)
}
