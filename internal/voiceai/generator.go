package voiceai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/config"
	"voice-agent-platform/pkg/logger"
	"voice-agent-platform/pkg/utils"
)

const (
	greetingMaxTokens = 80
	replyMaxTokens    = 120
	temperature       = 0.4

	emptyUtteranceReply = "I did not catch that clearly. Could you call again so I can assist you better?"
	echoLimit           = 80
)

// Generator turns call context into spoken text using an OpenAI-compatible
// chat completions endpoint. It never returns an error: every failure
// degrades to a deterministic sentence.
type Generator struct {
	client       *http.Client
	baseURL      string
	defaultModel string
	timeout      time.Duration
}

func NewGenerator(cfg config.ProvidersConfig, client *http.Client) *Generator {
	if client == nil {
		client = &http.Client{}
	}
	model := cfg.OpenAIDefaultModel
	if model == "" {
		model = "gpt-4.1-mini"
	}
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Generator{
		client:       client,
		baseURL:      strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		defaultModel: model,
		timeout:      timeout,
	}
}

func FallbackGreeting(agentName string) string {
	return fmt.Sprintf("Hello, this is %s. Thanks for calling. How can I help you today?", agentName)
}

func FallbackReply(utterance string) string {
	heard := strings.TrimSpace(utterance)
	if r := []rune(heard); len(r) > echoLimit {
		heard = string(r[:echoLimit])
	}
	return fmt.Sprintf("Thanks for sharing. I understood that you said: %s. I will pass this to the team so they can follow up quickly.", heard)
}

func (g *Generator) GenerateGreeting(ctx context.Context, a agents.Agent, callerNumber, apiKey string) (string, Provenance) {
	task := "Generate one concise spoken greeting for an inbound phone call. " +
		"It must be no more than 2 short sentences and should invite the caller to explain what they need. " +
		"Caller number: " + callerNumber + "."
	text, prov := g.generate(ctx, a, apiKey, task, greetingMaxTokens, FallbackGreeting(a.Name))
	generationsTotal.WithLabelValues("greeting", string(prov)).Inc()
	return text, prov
}

func (g *Generator) GenerateReply(ctx context.Context, a agents.Agent, utterance, apiKey string) (string, Provenance) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		generationsTotal.WithLabelValues("reply", string(ProvenanceFallbackEmptyInput)).Inc()
		return emptyUtteranceReply, ProvenanceFallbackEmptyInput
	}
	task := "Respond as a phone assistant in at most 2 concise sentences. " +
		"Acknowledge the caller request and give a clear next step. " +
		"Caller message: " + utterance
	text, prov := g.generate(ctx, a, apiKey, task, replyMaxTokens, FallbackReply(utterance))
	generationsTotal.WithLabelValues("reply", string(prov)).Inc()
	return text, prov
}

func (g *Generator) generate(ctx context.Context, a agents.Agent, apiKey, task string, maxTokens int, fallback string) (string, Provenance) {
	key := utils.UsableSecret(apiKey)
	if key == "" {
		return fallback, ProvenanceFallbackMissingKey
	}

	model := strings.TrimSpace(a.Model)
	if model == "" {
		model = g.defaultModel
	}
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: a.Prompt},
			{Role: "user", Content: task},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	text, _, err := firstSuccess(ctx, g.timeout, attempt[string]{
		name: "openai",
		run: func(ctx context.Context) (string, error) {
			return g.complete(ctx, key, req)
		},
	})
	if err != nil {
		logger.From(ctx).Warn("text generation fell back",
			"provenance", string(ProvenanceFallbackProviderError),
			"agent_id", a.ID,
			"err", err,
		)
		return fallback, ProvenanceFallbackProviderError
	}
	return text, ProvenanceProvider
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var errEmptyCompletion = errors.New("empty completion")

func (g *Generator) complete(ctx context.Context, apiKey string, body chatRequest) (string, error) {
	start := time.Now()
	defer func() { providerLatency.WithLabelValues("openai").Observe(time.Since(start).Seconds()) }()

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}
