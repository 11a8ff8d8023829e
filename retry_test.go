package bearchat

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetry_Success(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, Delay: 10 * time.Millisecond}

	callCount := 0
	result, attempts, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}
	if callCount != 1 || attempts != 1 {
		t.Errorf("Expected 1 call, got %d (attempts=%d)", callCount, attempts)
	}
}

func TestWithRetry_SucceedsOnLastAttempt(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, Delay: 10 * time.Millisecond}

	callCount := 0
	result, attempts, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("temporary failure")
		}
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error after retries, got: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}
	if callCount != 3 || attempts != 3 {
		t.Errorf("Expected 3 calls, got %d (attempts=%d)", callCount, attempts)
	}
}

func TestWithRetry_AnyErrorIsRetried(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, Delay: time.Millisecond}

	callCount := 0
	_, _, err := WithRetry(context.Background(), cfg, func() (int, error) {
		callCount++
		return 0, errors.New("401 unauthorized")
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_MaxRetriesExceeded(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, Delay: 10 * time.Millisecond}

	callCount := 0
	_, attempts, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", errors.New("attempt failed")
	})

	if err == nil || err.Error() != "attempt failed" {
		t.Fatalf("Expected last error, got: %v", err)
	}

	// Initial attempt + 2 retries = 3 calls
	if callCount != 3 || attempts != 3 {
		t.Errorf("Expected 3 calls (1 + 2 retries), got %d (attempts=%d)", callCount, attempts)
	}
}

func TestWithRetry_WaitsBetweenAttempts(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, Delay: 30 * time.Millisecond}

	start := time.Now()
	_, _, _ = WithRetry(context.Background(), cfg, func() (string, error) {
		return "", errors.New("fail")
	})
	elapsed := time.Since(start)

	if elapsed < 60*time.Millisecond {
		t.Errorf("Expected at least two delays (60ms), took %v", elapsed)
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, Delay: 1 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, attempts, err := WithRetry(ctx, cfg, func() (string, error) {
		return "", errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Error("cancellation should cut the retry delay short")
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 2 {
		t.Errorf("Expected MaxRetries 2, got %d", cfg.MaxRetries)
	}
	if cfg.Delay != 1*time.Second {
		t.Errorf("Expected Delay 1s, got %v", cfg.Delay)
	}
}
