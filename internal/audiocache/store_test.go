package audiocache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(20 * time.Minute)
	ctx := context.Background()

	id, err := s.Put(ctx, []byte("ID3..."), "audio/mpeg")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(id) != 32 {
		t.Fatalf("expected 32 hex id, got %q", id)
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b.Data) != "ID3..." || b.MediaType != "audio/mpeg" {
		t.Fatalf("unexpected blob %+v", b)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	clk := &manualClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(20 * time.Minute).WithClock(clk.Now)
	ctx := context.Background()

	old, _ := s.Put(ctx, []byte("a"), "audio/wav")
	clk.now = clk.now.Add(20 * time.Minute)
	if _, err := s.Get(ctx, old); err != nil {
		t.Fatalf("expected blob at exactly ttl to be live, got %v", err)
	}

	clk.now = clk.now.Add(time.Second)
	fresh, _ := s.Put(ctx, []byte("b"), "audio/wav")

	if s.Len() != 1 {
		t.Fatalf("expected expired entry to be purged, len=%d", s.Len())
	}
	if _, err := s.Get(ctx, old); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired blob to be absent, got %v", err)
	}
	if _, err := s.Get(ctx, fresh); err != nil {
		t.Fatalf("expected fresh blob, got %v", err)
	}
}

func TestMemoryStore_CountsLookups(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()
	hits := testutil.ToFloat64(lookupsTotal.WithLabelValues("memory", "hit"))
	misses := testutil.ToFloat64(lookupsTotal.WithLabelValues("memory", "miss"))

	id, _ := s.Put(ctx, []byte("x"), "audio/mpeg")
	_, _ = s.Get(ctx, id)
	_, _ = s.Get(ctx, "nope")

	if got := testutil.ToFloat64(lookupsTotal.WithLabelValues("memory", "hit")); got != hits+1 {
		t.Fatalf("expected one more hit, got %v", got-hits)
	}
	if got := testutil.ToFloat64(lookupsTotal.WithLabelValues("memory", "miss")); got != misses+1 {
		t.Fatalf("expected one more miss, got %v", got-misses)
	}
}

func TestRedisStore_DecodeChecksAge(t *testing.T) {
	clk := &manualClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewRedisStore(nil, 20*time.Minute)
	s.clock = clk.Now

	created := clk.now.Add(-5 * time.Minute)
	vals := map[string]string{
		"data":       "RIFF",
		"media_type": "audio/wav",
		"created_at": strconv.FormatInt(created.UnixMilli(), 10),
	}
	b, ok := s.decode(vals)
	if !ok || string(b.Data) != "RIFF" || b.MediaType != "audio/wav" {
		t.Fatalf("expected live blob, got ok=%v %+v", ok, b)
	}

	clk.now = clk.now.Add(16 * time.Minute)
	if _, ok := s.decode(vals); ok {
		t.Fatalf("expected blob older than ttl to be rejected")
	}
	if _, ok := s.decode(map[string]string{}); ok {
		t.Fatalf("expected empty hash to be absent")
	}
}
