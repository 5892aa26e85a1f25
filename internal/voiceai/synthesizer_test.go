package voiceai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"voice-agent-platform/internal/config"
)

func newTestSynthesizer(baseURL, fallback string) *Synthesizer {
	return NewSynthesizer(config.ProvidersConfig{
		RimeBaseURL:      baseURL,
		RimeModelID:      "arcana",
		FallbackVoice:    fallback,
		SynthesisTimeout: time.Second,
	}, nil)
}

func TestResolveVoiceName(t *testing.T) {
	cases := map[string]string{
		"":             "serena",
		"  ":           "serena",
		"Rime-Serena":  "serena",
		"rime-astra":   "astra",
		" Celeste ":    "celeste",
		"rime-":        "serena",
		"rime-rime-ab": "rime-ab",
	}
	for in, want := range cases {
		if got := ResolveVoiceName(in); got != want {
			t.Fatalf("ResolveVoiceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSynthesize_RawAudioResponse(t *testing.T) {
	var got rimeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rime-tts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg; charset=binary")
		_, _ = w.Write([]byte("ID3-bytes"))
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL, "serena")
	audio, ok := s.Synthesize(context.Background(), "Hello there", "Rime-Astra", "rime-key")
	if !ok {
		t.Fatalf("expected audio")
	}
	if string(audio.Data) != "ID3-bytes" || audio.MediaType != "audio/mpeg" {
		t.Fatalf("unexpected audio: %q %q", audio.Data, audio.MediaType)
	}
	if got.Speaker != "astra" || got.ModelID != "arcana" || got.Text != "Hello there" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestSynthesize_JSONEnvelope(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("mp3-data"))
	for _, field := range []string{"audioContent", "audio"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{field: encoded})
		}))

		s := newTestSynthesizer(srv.URL, "serena")
		audio, ok := s.Synthesize(context.Background(), "Hi", "serena", "rime-key")
		srv.Close()
		if !ok {
			t.Fatalf("%s: expected audio", field)
		}
		if string(audio.Data) != "mp3-data" || audio.MediaType != "audio/mpeg" {
			t.Fatalf("%s: unexpected audio %q %q", field, audio.Data, audio.MediaType)
		}
	}
}

func TestSynthesize_FallsBackToConfiguredVoice(t *testing.T) {
	var mu sync.Mutex
	var speakers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rimeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		speakers = append(speakers, req.Speaker)
		mu.Unlock()
		if req.Speaker != "serena" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("wav"))
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL, "serena")
	audio, ok := s.Synthesize(context.Background(), "Hi", "unknown-voice", "rime-key")
	if !ok || audio.MediaType != "audio/wav" {
		t.Fatalf("expected fallback voice audio, got ok=%v %+v", ok, audio)
	}
	if len(speakers) != 2 || speakers[0] != "unknown-voice" || speakers[1] != "serena" {
		t.Fatalf("unexpected attempts: %v", speakers)
	}
}

func TestSynthesize_NoSecondAttemptWhenFallbackMatches(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL, "Rime-Serena")
	if _, ok := s.Synthesize(context.Background(), "Hi", "serena", "rime-key"); ok {
		t.Fatalf("expected no audio")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestSynthesize_EmptyEnvelopeIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"audioContent":""}`))
	}))
	defer srv.Close()

	s := newTestSynthesizer(srv.URL, "serena")
	if _, ok := s.Synthesize(context.Background(), "Hi", "serena", "rime-key"); ok {
		t.Fatalf("expected no audio for empty envelope")
	}
}

func TestSynthesize_MissingCredential(t *testing.T) {
	s := newTestSynthesizer("http://127.0.0.1:0", "serena")
	for _, key := range []string{"", "rim*****abcd"} {
		if _, ok := s.Synthesize(context.Background(), "Hi", "serena", key); ok {
			t.Fatalf("key %q: expected no audio", key)
		}
	}
}

func TestFirstSuccess_ReportsAllFailures(t *testing.T) {
	_, name, err := firstSuccess(context.Background(), time.Second,
		attempt[int]{name: "a", run: func(context.Context) (int, error) { return 0, errNoAudio }},
		attempt[int]{name: "b", run: func(context.Context) (int, error) { return 0, errEmptyCompletion }},
	)
	if err == nil || name != "" {
		t.Fatalf("expected joined failure, got name=%q err=%v", name, err)
	}
	v, name, err := firstSuccess(context.Background(), time.Second,
		attempt[int]{name: "a", run: func(context.Context) (int, error) { return 0, errNoAudio }},
		attempt[int]{name: "b", run: func(context.Context) (int, error) { return 7, nil }},
	)
	if err != nil || name != "b" || v != 7 {
		t.Fatalf("expected b to win, got %d %q %v", v, name, err)
	}
}
