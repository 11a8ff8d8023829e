package bearchat

import "testing"

func TestCacheKey(t *testing.T) {
	key := CacheKey("Hello World", English, Japanese)
	if key != "hello world_en_ja" {
		t.Errorf("CacheKey = %q, want %q", key, "hello world_en_ja")
	}
}

func TestCacheKey_CaseInsensitive(t *testing.T) {
	a := CacheKey("Hello", English, Japanese)
	b := CacheKey("HELLO", English, Japanese)
	if a != b {
		t.Errorf("keys differ by case: %q vs %q", a, b)
	}
}

func TestCacheKey_Distinct(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"different text", CacheKey("hello", English, Japanese), CacheKey("hi", English, Japanese)},
		{"different source", CacheKey("hello", English, Japanese), CacheKey("hello", Chinese, Japanese)},
		{"different target", CacheKey("hello", English, Japanese), CacheKey("hello", English, Korean)},
		{"swapped pair", CacheKey("hello", English, Japanese), CacheKey("hello", Japanese, English)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a == tt.b {
				t.Errorf("expected distinct keys, both %q", tt.a)
			}
		})
	}
}

func TestCacheKey_Untrimmed(t *testing.T) {
	if CacheKey(" hello", English, Japanese) == CacheKey("hello", English, Japanese) {
		t.Error("leading whitespace is part of the key")
	}
}
