package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AppendKeepsOrderAndDuplicates(t *testing.T) {
	r := New()
	assert.Equal(t, 1, r.Append("a"))
	assert.Equal(t, 2, r.Append("b"))
	assert.Equal(t, 3, r.Append("a"))

	assert.Equal(t, []string{"a", "b", "a"}, r.Snapshot())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	r := New()
	r.Append("a")
	snap := r.Snapshot()
	snap[0] = "mutated"
	assert.Equal(t, []string{"a"}, r.Snapshot())
}

func TestRegistry_Truncate(t *testing.T) {
	r := New()
	r.Append("a")
	r.Append("b")
	r.Append("c")

	r.Truncate(5)
	assert.Equal(t, 3, r.Len(), "truncate beyond length is a no-op")

	r.Truncate(2)
	assert.Equal(t, []string{"a", "b"}, r.Snapshot())

	r.Truncate(-1)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ResetIsIdempotent(t *testing.T) {
	r := New()
	r.Append("a")
	r.Reset()
	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Snapshot())
}

func TestRegistry_ConcurrentAppend(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Append("x")
		}()
	}
	wg.Wait()
	require.Equal(t, 50, r.Len())
}

func TestBatch(t *testing.T) {
	tests := []struct {
		name  string
		links []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"abc.com"}, "abc.com"},
		{"several", []string{"abc.com", "xyz.com", "abc.com"}, "abc.com, xyz.com, abc.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Batch(tt.links))
		})
	}
}
