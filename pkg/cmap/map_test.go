package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestMap_SetGetDelete(t *testing.T) {
	m := New[string, int]()

	m.Set("a", 1)
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if !m.Has("a") {
		t.Error("Has(a) = false, want true")
	}

	m.Delete("a")
	if m.Has("a") {
		t.Error("Has(a) after Delete = true, want false")
	}
}

func TestMap_Pop(t *testing.T) {
	m := New[string, string]()
	m.Set("k", "v")

	v, ok := m.Pop("k")
	if !ok || v != "v" {
		t.Errorf("Pop(k) = %q, %v; want v, true", v, ok)
	}
	if _, ok := m.Pop("k"); ok {
		t.Error("second Pop(k) should report absent")
	}
}

func TestMap_RangeAndCount(t *testing.T) {
	m := NewWithShards[string, int](4)
	for i := 0; i < 20; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}

	if m.Count() != 20 {
		t.Errorf("Count() = %d, want 20", m.Count())
	}

	seen := 0
	m.Range(func(k string, v int) bool {
		seen++
		return true
	})
	if seen != 20 {
		t.Errorf("Range visited %d, want 20", seen)
	}

	stopped := 0
	m.Range(func(k string, v int) bool {
		stopped++
		return stopped < 3
	})
	if stopped != 3 {
		t.Errorf("Range with early stop visited %d, want 3", stopped)
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", m.Count())
	}
}

func TestNewWithShards_InvalidCount(t *testing.T) {
	m := NewWithShards[string, int](3)
	if len(m.shards) != DefaultShardCount {
		t.Errorf("shards = %d, want %d", len(m.shards), DefaultShardCount)
	}
}

func TestMap_Concurrent(t *testing.T) {
	m := New[int, int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Set(n, n)
			m.Get(n)
		}(i)
	}
	wg.Wait()

	if m.Count() != 50 {
		t.Errorf("Count() = %d, want 50", m.Count())
	}
}
