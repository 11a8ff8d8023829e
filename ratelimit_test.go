package bearchat

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60, // 1 per second
		BurstSize:         3,
	})

	// Should be able to acquire burst size immediately
	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Errorf("Expected to acquire token %d", i)
		}
	}

	// Fourth should fail
	if limiter.Allow() {
		t.Error("Expected fourth acquire to fail")
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})

	if limiter.Burst() != 1 {
		t.Errorf("Expected default burst 1, got %d", limiter.Burst())
	}
	if limiter.Limit() != 1 {
		t.Errorf("Expected default limit of 1 token/sec, got %v", limiter.Limit())
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	})

	limiter.Allow()
	if limiter.Allow() {
		t.Error("Expected acquire to fail after drain")
	}

	// Wait for refill (100ms for 1 token at 10/sec)
	time.Sleep(150 * time.Millisecond)

	if !limiter.Allow() {
		t.Error("Expected acquire to succeed after refill")
	}
}

func TestRateLimitedTranslator(t *testing.T) {
	inner := newStubTranslator()
	inner.translations["hello"] = "こんにちは"

	translator := NewRateLimitedTranslator(inner, RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	})

	req := TranslationRequest{Text: "hello", From: English, To: Japanese}

	start := time.Now()
	first := translator.Translate(context.Background(), req)
	second := translator.Translate(context.Background(), req)
	elapsed := time.Since(start)

	if first.Err != nil || second.Err != nil {
		t.Fatalf("unexpected errors: %v, %v", first.Err, second.Err)
	}
	if second.Text != "こんにちは" {
		t.Errorf("Expected translation, got %q", second.Text)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("Second call should have waited for a token, took %v", elapsed)
	}
	if inner.Calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", inner.Calls())
	}
	if translator.ModelName() != inner.ModelName() {
		t.Errorf("ModelName should delegate, got %q", translator.ModelName())
	}
}

func TestRateLimitedTranslator_WaitCancelled(t *testing.T) {
	inner := newStubTranslator()
	translator := NewRateLimitedTranslator(inner, RateLimitConfig{
		RequestsPerMinute: 1, // Very slow
		BurstSize:         1,
	})
	translator.Limiter().Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := translator.Translate(ctx, TranslationRequest{Text: "hello", From: English, To: Japanese})
	if !IsNetworkError(result.Err) {
		t.Fatalf("Expected NetworkError, got %v", result.Err)
	}
	if inner.Calls() != 0 {
		t.Errorf("Inner translator should not be called, got %d calls", inner.Calls())
	}
}

func TestRateLimitedTranslator_EmptyBypassesLimiter(t *testing.T) {
	inner := newStubTranslator()
	translator := NewRateLimitedTranslator(inner, RateLimitConfig{RequestsPerMinute: 1})
	translator.Limiter().Allow()

	result := translator.Translate(context.Background(), TranslationRequest{Text: "   "})
	if result.Err != nil || result.Text != "" {
		t.Errorf("Expected empty success, got %+v", result)
	}
}
