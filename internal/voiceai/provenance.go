package voiceai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provenance records where spoken text came from. It is for observability
// only; callers must not branch on it except for cosmetic touches.
type Provenance string

const (
	ProvenanceProvider              Provenance = "provider"
	ProvenanceFallbackMissingKey    Provenance = "fallback-missing-key"
	ProvenanceFallbackProviderError Provenance = "fallback-provider-error"
	ProvenanceFallbackEmptyInput    Provenance = "fallback-empty-input"
)

func (p Provenance) IsFallback() bool { return p != ProvenanceProvider }

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_text_generations_total",
		Help: "Greeting and reply generations by kind and provenance",
	}, []string{"kind", "provenance"})

	synthesesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_speech_syntheses_total",
		Help: "Speech synthesis outcomes: primary, fallback-voice, unavailable (no key) or failed",
	}, []string{"result"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voice_provider_request_duration_seconds",
		Help:    "Upstream provider request latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 12, 18},
	}, []string{"provider"})
)
