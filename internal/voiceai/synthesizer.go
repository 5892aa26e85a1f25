package voiceai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voice-agent-platform/internal/config"
	"voice-agent-platform/pkg/logger"
	"voice-agent-platform/pkg/utils"
)

const defaultVoice = "serena"

// Audio is a synthesized utterance ready to be cached and played.
type Audio struct {
	Data      []byte
	MediaType string
}

// Synthesizer converts text to speech with Rime. Absence of audio is a
// normal outcome; callers fall back to the telephony provider's own voice.
type Synthesizer struct {
	client        *http.Client
	baseURL       string
	modelID       string
	fallbackVoice string
	timeout       time.Duration
}

func NewSynthesizer(cfg config.ProvidersConfig, client *http.Client) *Synthesizer {
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.SynthesisTimeout
	if timeout <= 0 {
		timeout = 18 * time.Second
	}
	modelID := cfg.RimeModelID
	if modelID == "" {
		modelID = "arcana"
	}
	return &Synthesizer{
		client:        client,
		baseURL:       strings.TrimRight(cfg.RimeBaseURL, "/"),
		modelID:       modelID,
		fallbackVoice: ResolveVoiceName(cfg.FallbackVoice),
		timeout:       timeout,
	}
}

// ResolveVoiceName normalizes an agent voice id into a Rime speaker name.
// "Rime-Serena" becomes "serena"; blank input yields the default voice.
func ResolveVoiceName(voiceID string) string {
	v := strings.ToLower(strings.TrimSpace(voiceID))
	v = strings.TrimPrefix(v, "rime-")
	if v == "" {
		return defaultVoice
	}
	return v
}

// Synthesize tries the requested voice and then the configured fallback voice
// when it differs. The boolean is false when no audio could be produced.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceID, credential string) (Audio, bool) {
	key := utils.UsableSecret(credential)
	text = strings.TrimSpace(text)
	if key == "" || text == "" {
		synthesesTotal.WithLabelValues("unavailable").Inc()
		return Audio{}, false
	}

	voice := ResolveVoiceName(voiceID)
	attempts := []attempt[Audio]{{
		name: "primary",
		run:  func(ctx context.Context) (Audio, error) { return s.speak(ctx, key, voice, text) },
	}}
	if s.fallbackVoice != voice {
		fallback := s.fallbackVoice
		attempts = append(attempts, attempt[Audio]{
			name: "fallback-voice",
			run:  func(ctx context.Context) (Audio, error) { return s.speak(ctx, key, fallback, text) },
		})
	}

	audio, winner, err := firstSuccess(ctx, s.timeout, attempts...)
	if err != nil {
		synthesesTotal.WithLabelValues("failed").Inc()
		logger.From(ctx).Warn("speech synthesis failed", "voice", voice, "err", err)
		return Audio{}, false
	}
	synthesesTotal.WithLabelValues(winner).Inc()
	if winner != "primary" {
		logger.From(ctx).Info("speech synthesized with fallback voice", "voice", voice, "fallback_voice", s.fallbackVoice)
	}
	return audio, true
}

type rimeRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	ModelID string `json:"modelId"`
}

type rimeEnvelope struct {
	AudioContent string `json:"audioContent"`
	Audio        string `json:"audio"`
}

var errNoAudio = errors.New("no audio in response")

func (s *Synthesizer) speak(ctx context.Context, apiKey, voice, text string) (Audio, error) {
	start := time.Now()
	defer func() { providerLatency.WithLabelValues("rime").Observe(time.Since(start).Seconds()) }()

	payload, err := json.Marshal(rimeRequest{Speaker: voice, Text: text, ModelID: s.modelID})
	if err != nil {
		return Audio{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/rime-tts", bytes.NewReader(payload))
	if err != nil {
		return Audio{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return Audio{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Audio{}, fmt.Errorf("rime status %d", resp.StatusCode)
	}
	return decodeAudio(resp.Header.Get("Content-Type"), body)
}

// decodeAudio accepts either raw audio bytes or a JSON envelope carrying
// base64 audio under audioContent or audio.
func decodeAudio(contentType string, body []byte) (Audio, error) {
	if strings.Contains(strings.ToLower(contentType), "audio") {
		if len(body) == 0 {
			return Audio{}, errNoAudio
		}
		mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
		return Audio{Data: body, MediaType: mediaType}, nil
	}

	var env rimeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Audio{}, fmt.Errorf("parse response: %w", err)
	}
	encoded := env.AudioContent
	if encoded == "" {
		encoded = env.Audio
	}
	if encoded == "" {
		return Audio{}, errNoAudio
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Audio{}, fmt.Errorf("decode audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, errNoAudio
	}
	return Audio{Data: data, MediaType: "audio/mpeg"}, nil
}
