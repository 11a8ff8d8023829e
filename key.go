package bearchat

import "strings"

// CacheKey derives the cache key for a (text, from, to) tuple.
// Keys are case-insensitive: "Hello" and "hello" share an entry.
func CacheKey(text string, from, to Language) string {
	return strings.ToLower(text + "_" + from.Code() + "_" + to.Code())
}
