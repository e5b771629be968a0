package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, 10)
	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get = (%v, %v), want (v, true)", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get on missing key reported a hit")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	t.Parallel()

	c := New(20*time.Millisecond, 10)
	c.Set("k", "v")
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("entry survived past its TTL")
	}
	if n := c.Len(); n != 0 {
		t.Errorf("Len after expired Get = %d, want 0", n)
	}
}

func TestCacheEvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, 3)
	base := time.Unix(1_700_000_000, 0)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4)

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry not evicted at capacity")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %q evicted unexpectedly", k)
		}
	}
	if n := c.Len(); n != 3 {
		t.Errorf("Len = %d, want 3", n)
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("b", 20)

	if _, ok := c.Get("a"); !ok {
		t.Error("overwrite of existing key evicted another entry")
	}
	if got, _ := c.Get("b"); got != 20 {
		t.Errorf("Get(b) = %v, want 20", got)
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, 10)
	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry still readable")
	}
	if n := c.Len(); n != 0 {
		t.Errorf("Len = %d, want 0", n)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, 32)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", (g*31+i)%64)
				c.Set(key, i)
				c.Get(key)
				if i%10 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if n := c.Len(); n > 32 {
		t.Errorf("Len = %d exceeds capacity 32", n)
	}
}
