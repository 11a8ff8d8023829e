package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordCacheLookup(t *testing.T) {
	c := NewCollector()

	c.RecordCacheLookup(true)
	c.RecordCacheLookup(true)
	c.RecordCacheLookup(false)

	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("Expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("Expected 1 miss, got %v", got)
	}
}

func TestCollector_RecordTranslation(t *testing.T) {
	c := NewCollector()

	c.RecordTranslation(nil, 200*time.Millisecond)
	c.RecordTranslation(errors.New("boom"), time.Second)

	if got := testutil.ToFloat64(c.Translations.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(c.Translations.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
	if got := testutil.CollectAndCount(c.TranslationDuration); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
}

func TestCollector_RecordStale(t *testing.T) {
	c := NewCollector()
	c.RecordStale()

	if got := testutil.ToFloat64(c.StaleResults); got != 1 {
		t.Errorf("Expected 1 stale result, got %v", got)
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector

	// Must not panic
	c.RecordCacheLookup(true)
	c.RecordTranslation(nil, time.Second)
	c.RecordStale()
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordCacheLookup(true)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `bearchat_cache_lookups_total{result="hit"} 1`) {
		t.Errorf("Expected cache lookup metric in output, got:\n%s", body)
	}
}
