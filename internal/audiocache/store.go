package audiocache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Blob is synthesized audio waiting to be fetched by Twilio.
type Blob struct {
	Data      []byte
	MediaType string
	CreatedAt time.Time
}

// Store holds short-lived audio blobs under opaque ids.
// An entry older than the TTL is indistinguishable from an absent one.
type Store interface {
	Put(ctx context.Context, data []byte, mediaType string) (string, error)
	Get(ctx context.Context, id string) (Blob, error)
}

const DefaultTTL = 20 * time.Minute

var ErrNotFound = errors.New("audio not found")

var (
	putsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_audio_cache_puts_total",
		Help: "Audio blobs stored, by cache driver",
	}, []string{"driver"})

	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_audio_cache_lookups_total",
		Help: "Audio blob lookups by driver and result (hit or miss)",
	}, []string{"driver", "result"})
)

func observeLookup(driver string, err error) {
	result := "hit"
	if err != nil {
		result = "miss"
	}
	lookupsTotal.WithLabelValues(driver, result).Inc()
}

// newID returns 32 lowercase hex characters.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
