package bearchat

import (
	"context"
	"errors"
	"testing"
)

func TestWarm(t *testing.T) {
	tr := newStubTranslator()
	tr.failures["broken"] = &NetworkError{Message: "boom", Attempts: 3}
	cache := newStubCache()
	cache.Set(context.Background(), "known", English, Japanese, "既知", "stub-model")

	phrases := []string{"hello", "Hello", "known", "", "   ", "world", "broken"}
	result, err := Warm(context.Background(), tr, cache, phrases, WarmConfig{From: English, To: Japanese, Concurrency: 2})
	if err != nil {
		t.Fatalf("Warm failed: %v", err)
	}

	if result.Cached != 1 {
		t.Errorf("Expected 1 cached, got %d", result.Cached)
	}
	if result.Translated != 2 {
		t.Errorf("Expected 2 translated, got %d", result.Translated)
	}
	if result.Skipped != 3 {
		t.Errorf("Expected 3 skipped (duplicate and empty), got %d", result.Skipped)
	}
	if len(result.Failed) != 1 || result.Failed[0].Text != "broken" {
		t.Errorf("Expected broken to fail, got %+v", result.Failed)
	}

	for _, text := range []string{"hello", "world"} {
		if _, ok := cache.Get(context.Background(), text, English, Japanese, "stub-model"); !ok {
			t.Errorf("%q should be cached after warming", text)
		}
	}
	if tr.Calls() != 3 {
		t.Errorf("Expected 3 translator calls, got %d", tr.Calls())
	}
}

func TestWarm_Empty(t *testing.T) {
	tr := newStubTranslator()
	result, err := Warm(context.Background(), tr, newStubCache(), nil, WarmConfig{From: English, To: Japanese})
	if err != nil {
		t.Fatalf("Warm failed: %v", err)
	}
	if result.Translated != 0 || tr.Calls() != 0 {
		t.Errorf("Expected nothing to happen, got %+v", result)
	}
}

func TestWarm_Cancelled(t *testing.T) {
	tr := newStubTranslator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Warm(ctx, tr, newStubCache(), []string{"a", "b", "c"}, WarmConfig{From: English, To: Japanese})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if tr.Calls() != 0 {
		t.Errorf("Expected no translations after cancellation, got %d", tr.Calls())
	}
}
