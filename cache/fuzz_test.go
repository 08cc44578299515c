package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Fuzz basic Put/Get/Remove semantics under arbitrary string inputs.
// Key and value lengths are capped to keep fuzzing memory bounded.
func FuzzCache_PutGetRemove(f *testing.F) {
	f.Add("", "", uint8(1))
	f.Add("a", "1", uint8(2))
	f.Add("αβγ", "δ", uint8(3))
	f.Add("emoji🙂", "🙂🙂", uint8(7))
	f.Add("long", strings.Repeat("x", 1024), uint8(0))

	f.Fuzz(func(t *testing.T, k, v string, shards uint8) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := NewLRU[string, string](16, int(shards%9))
		t.Cleanup(func() { _ = c.Close() })

		// Put -> Get must return the same value.
		c.Put(k, v)
		got, ok := c.Get(k)
		require.True(t, ok, "after Put")
		require.Equal(t, v, got)

		// Overwrite keeps one entry.
		c.Put(k, v+"!")
		got, _ = c.Get(k)
		require.Equal(t, v+"!", got, "after overwrite")
		require.Equal(t, 1, c.Len(), "overwrite keeps one entry")

		// Remove must delete and return true once.
		require.True(t, c.Remove(k))
		require.False(t, c.Remove(k), "second Remove")
		_, ok = c.Get(k)
		require.False(t, ok, "key must be absent after Remove")
	})
}
