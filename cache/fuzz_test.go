package cache

import (
	"strings"
	"testing"
)

// Put/Get/Invalidate on arbitrary string input must not panic and must keep
// the size bound.
func FuzzLRU_PutGetInvalidate(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := newTestLRU[string, string](t, 4)

		if err := c.Put(k, v); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if got, ok := c.Get(k); !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// Fill past capacity with derived keys; k is the oldest and must go.
		for i := 0; i < 4; i++ {
			_ = c.Put(k+strings.Repeat("#", i+1), v)
		}
		if c.Len() != 4 {
			t.Fatalf("Len = %d, want 4", c.Len())
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("oldest key %q survived eviction", k)
		}

		c.Invalidate(k + "#")
		if _, ok := c.Get(k + "#"); ok {
			t.Fatalf("key must be absent after Invalidate")
		}
		if c.Len() != 3 {
			t.Fatalf("Len = %d, want 3", c.Len())
		}
	})
}
