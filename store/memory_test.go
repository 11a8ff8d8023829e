package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "key1", []byte("value1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := s.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("Get returned %q, want %q", val, "value1")
	}

	// Test missing key
	_, err = s.Get(ctx, "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get should return ErrNotFound for missing key, got %v", err)
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "key1", []byte("value1"))
	s.Set(ctx, "key1", []byte("value2"))

	val, _ := s.Get(ctx, "key1")
	if string(val) != "value2" {
		t.Errorf("Value should be overwritten, got %q, want %q", val, "value2")
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 key, got %d", s.Len())
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	input := []byte("value")
	s.Set(ctx, "key", input)
	input[0] = 'X'

	val, _ := s.Get(ctx, "key")
	val[1] = 'Y'

	again, _ := s.Get(ctx, "key")
	if string(again) != "value" {
		t.Errorf("Stored value was mutated through a caller slice: %q", again)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "key1", []byte("value1"))
	if err := s.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "key1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing key is fine
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
	if s.Used() != 0 {
		t.Errorf("Expected 0 bytes used, got %d", s.Used())
	}
}

func TestMemoryStore_Quota(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithQuota(10))

	// "k" + "12345" = 6 bytes
	if err := s.Set(ctx, "k", []byte("12345")); err != nil {
		t.Fatalf("Set within quota failed: %v", err)
	}

	// Replacing with 10 bytes total is allowed: the old value is released
	if err := s.Set(ctx, "k", []byte("123456789")); err != nil {
		t.Fatalf("Overwrite within quota failed: %v", err)
	}

	err := s.Set(ctx, "k", []byte("1234567890"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
	}

	// Failed write leaves the previous value
	val, _ := s.Get(ctx, "k")
	if string(val) != "123456789" {
		t.Errorf("Previous value should survive a failed write, got %q", val)
	}
	if s.Used() != 10 {
		t.Errorf("Expected 10 bytes used, got %d", s.Used())
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(ctx, "shared", []byte("value"))
			s.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("Expected 1 key, got %d", s.Len())
	}
}
