package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := New[string, int](Config{MaxSize: 3})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		if v, ok := c.Get(key); !ok || v != want {
			t.Errorf("Get(%s) = %d, %v; want %d, true", key, v, ok, want)
		}
	}
	if _, ok := c.Get("d"); ok {
		t.Error("Get(d) should return false")
	}
	if n := c.Len(); n != 3 {
		t.Errorf("Len() = %d; want 3", n)
	}

	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after update = %d; want 10", v)
	}

	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) should return false after Remove")
	}
	c.Clear()
	if n := c.Len(); n != 0 {
		t.Errorf("Len() after Clear = %d; want 0", n)
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := New[string, int](Config{MaxSize: 2})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")    // a is now most recent
	c.Put("c", 3) // evicts b

	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) should return false after eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Get(a) should survive eviction")
	}
	if s := c.Stats(); s.Evictions != 1 || s.Size != 2 || s.MaxSize != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[string, int](Config{TTL: time.Minute})
	c.now = func() time.Time { return now }

	c.Put("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) should hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) should miss after expiry")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be removed on access")
	}
}

func TestLRU_Stats(t *testing.T) {
	c := New[int, string](DefaultConfig())
	c.Put(1, "one")
	c.Get(1)
	c.Get(1)
	c.Get(2)

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Size != 1 || s.MaxSize != 256 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRU_GetOrLoad(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10})
	calls := 0
	load := func() (int, error) {
		calls++
		return 36, nil
	}

	for range 3 {
		v, err := c.GetOrLoad("John 3", load)
		if err != nil || v != 36 {
			t.Fatalf("GetOrLoad() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("Fake 1", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrLoad() error = %v, want %v", err, boom)
	}
	if _, ok := c.Get("Fake 1"); ok {
		t.Error("failed loads must not be cached")
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := New[string, int](Config{MaxSize: 50})
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i*j)%75)
				c.Put(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if n := c.Len(); n > 50 {
		t.Errorf("Len() = %d exceeds MaxSize", n)
	}
}
