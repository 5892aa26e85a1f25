package telephony

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/audiocache"
	"voice-agent-platform/internal/calls"
	"voice-agent-platform/internal/settings"
	"voice-agent-platform/internal/voiceai"
	"voice-agent-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Webhook paths, relative to the public base URL.
const (
	PathVoice      = "/twilio/voice"
	PathGather     = "/twilio/gather"
	PathVoiceEnd   = "/twilio/voice-finish"
	PathRecording  = "/twilio/recording"
	PathStatus     = "/twilio/status"
	PathAudioFiles = "/twilio/audio"
)

// WebhookHandler converts Twilio callbacks into ledger updates and TwiML.
//
// Call flow: voice (ringing) -> gather (gathering) -> voice-finish (finishing).
// recording and status callbacks may arrive at any point and only touch the ledger.
type WebhookHandler struct {
	agents    AgentFinder
	ledger    SessionLedger
	settings  SettingsSource
	generator TextGenerator
	speech    SpeechSynthesizer
	audio     audiocache.Store
	urls      URLBuilder
}

type WebhookDeps struct {
	Agents    AgentFinder
	Ledger    SessionLedger
	Settings  SettingsSource
	Generator TextGenerator
	Speech    SpeechSynthesizer
	Audio     audiocache.Store
	URLs      URLBuilder
}

func NewWebhookHandler(d WebhookDeps) *WebhookHandler {
	return &WebhookHandler{
		agents:    d.Agents,
		ledger:    d.Ledger,
		settings:  d.Settings,
		generator: d.Generator,
		speech:    d.Speech,
		audio:     d.Audio,
		urls:      d.URLs,
	}
}

// HandleVoice answers a ringing call with a greeting and a speech Gather.
func (h *WebhookHandler) HandleVoice(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromGin(c).With("phase", string(PhaseRinging))

	form, err := ParseWebhookForm(c.Request)
	if err != nil {
		log.Warn("twilio webhook parse failed", "err", err)
		writeTwiML(c, fallbackDocument, nil)
		return
	}
	log = log.With("call_sid", form.CallSid)

	agent, ok := h.routeCall(ctx, log, form.To)
	if !ok {
		doc, err := RenderUnavailable()
		writeTwiML(c, doc, err)
		return
	}
	h.openSession(ctx, log, form, agent)

	cfg := h.loadSettings(ctx, log)
	text, prov := h.generator.GenerateGreeting(ctx, agent, form.From, cfg.OpenAIAPIKey)
	greeting := h.utterance(c, text, agent.VoiceID, cfg.RimeAPIKey)
	log.Log(ctx, provenanceLevel(prov), "greeting ready",
		"agent_id", agent.ID,
		"provenance", string(prov),
		"audio", greeting.AudioURL != "",
		"next_phase", string(PhaseRinging.Next()),
	)

	doc, err := RenderGreeting(greeting, h.urls.Absolute(c.Request, PathGather), cfg.EnableBargeInInterruption)
	writeTwiML(c, doc, err)
}

// HandleGather replies to the caller's speech and redirects to voice-finish.
func (h *WebhookHandler) HandleGather(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromGin(c).With("phase", string(PhaseGathering))

	form, err := ParseWebhookForm(c.Request)
	if err != nil {
		log.Warn("twilio webhook parse failed", "err", err)
		writeTwiML(c, fallbackDocument, nil)
		return
	}
	log = log.With("call_sid", form.CallSid)

	agent, ok := h.routeCall(ctx, log, form.To)
	if !ok {
		doc, err := RenderUnavailable()
		writeTwiML(c, doc, err)
		return
	}
	h.openSession(ctx, log, form, agent)

	cfg := h.loadSettings(ctx, log)
	text, prov := h.generator.GenerateReply(ctx, agent, form.SpeechResult, cfg.OpenAIAPIKey)
	reply := h.utterance(c, text, agent.VoiceID, cfg.RimeAPIKey)

	sentiment := calls.SentimentNeutral
	if strings.TrimSpace(form.SpeechResult) != "" {
		sentiment = calls.SentimentPositive
	}
	if _, err := h.ledger.UpdateSentiment(ctx, form.CallSid, sentiment); err != nil {
		log.Warn("call sentiment update failed", "err", err)
	}

	withFiller := cfg.PlayLatencyFillerPhraseOnTimeout && prov == voiceai.ProvenanceFallbackProviderError
	log.Log(ctx, provenanceLevel(prov), "reply ready",
		"agent_id", agent.ID,
		"provenance", string(prov),
		"audio", reply.AudioURL != "",
		"filler", withFiller,
		"next_phase", string(PhaseGathering.Next()),
	)

	doc, err := RenderReply(reply, withFiller, h.urls.Absolute(c.Request, PathVoiceEnd))
	writeTwiML(c, doc, err)
}

// HandleVoiceFinish closes the conversation. It is stateless.
func (h *WebhookHandler) HandleVoiceFinish(c *gin.Context) {
	doc, err := RenderFinish()
	writeTwiML(c, doc, err)
}

// HandleRecording and HandleStatus always answer 200. Failures are logged
// and reported as ignored.
func (h *WebhookHandler) HandleRecording(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromGin(c)

	form, err := ParseWebhookForm(c.Request)
	if err != nil {
		log.Warn("twilio webhook parse failed", "err", err)
		c.JSON(http.StatusOK, ignored(reasonInvalidForm))
		return
	}

	// A non-numeric duration never beats the stored one under the max rule.
	duration, _ := parseSeconds(form.RecordingDuration)
	if _, err := h.ledger.UpdateRecording(ctx, form.CallSid, form.RecordingURL, duration); err != nil {
		c.JSON(http.StatusOK, ledgerFailure(log, "recording update failed", form.CallSid, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) HandleStatus(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromGin(c)

	form, err := ParseWebhookForm(c.Request)
	if err != nil {
		log.Warn("twilio webhook parse failed", "err", err)
		c.JSON(http.StatusOK, ignored(reasonInvalidForm))
		return
	}

	existing, err := h.ledger.Get(ctx, form.CallSid)
	if err != nil {
		c.JSON(http.StatusOK, ledgerFailure(log, "call lookup failed", form.CallSid, err))
		return
	}

	// Blank or non-integer keeps what is stored.
	duration, ok := parseSeconds(form.CallDuration)
	if !ok {
		duration = existing.DurationSeconds
	}

	status := calls.MapProviderStatus(form.CallStatus)
	if _, err := h.ledger.UpdateStatus(ctx, form.CallSid, status, duration, form.RecordingURL); err != nil {
		c.JSON(http.StatusOK, ledgerFailure(log, "call status update failed", form.CallSid, err))
		return
	}

	resp := gin.H{"status": "ok"}
	if status == calls.StatusFailed {
		if cfg := h.loadSettings(ctx, log); cfg.AllowAutoRetryOnFailedCalls {
			resp["retry"] = "requested"
			log.Info("call retry requested", "call_sid", form.CallSid, "provider_status", form.CallStatus)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAudio serves cached synthesized audio to Twilio's <Play>.
func (h *WebhookHandler) HandleAudio(c *gin.Context) {
	blob, err := h.audio.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, audiocache.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "audio not found"})
			return
		}
		logger.FromGin(c).Error("audio lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	mediaType := blob.MediaType
	if mediaType == "" {
		mediaType = "audio/mpeg"
	}
	c.Data(http.StatusOK, mediaType, blob.Data)
}

func (h *WebhookHandler) routeCall(ctx context.Context, log *slog.Logger, dialed string) (agents.Agent, bool) {
	agent, err := h.agents.FindByNumber(ctx, dialed)
	if err != nil {
		if errors.Is(err, agents.ErrNoAgents) {
			log.Error("service unavailable: no agents configured", "to", dialed)
		} else {
			log.Error("agent lookup failed", "to", dialed, "err", err)
		}
		return agents.Agent{}, false
	}
	return agent, true
}

func (h *WebhookHandler) openSession(ctx context.Context, log *slog.Logger, form WebhookForm, agent agents.Agent) {
	s, created, err := h.ledger.GetOrCreate(ctx, form.CallSid, agent.Name, form.From)
	if err != nil {
		log.Error("call session open failed", "err", err)
		return
	}
	if created {
		log.Info("call session opened", "call_id", s.ID(), "agent_id", agent.ID)
	}
}

// loadSettings never fails the call; a zero value means every provider is
// treated as unconfigured.
func (h *WebhookHandler) loadSettings(ctx context.Context, log *slog.Logger) settings.Settings {
	s, err := h.settings.Get(ctx)
	if err != nil {
		log.Error("settings load failed", "err", err)
		return settings.Settings{}
	}
	return s
}

func (h *WebhookHandler) utterance(c *gin.Context, text, voiceID, credential string) Utterance {
	ctx := c.Request.Context()
	u := Utterance{Text: text}
	audio, ok := h.speech.Synthesize(ctx, text, voiceID, credential)
	if !ok {
		return u
	}
	id, err := h.audio.Put(ctx, audio.Data, audio.MediaType)
	if err != nil {
		logger.FromGin(c).Warn("audio cache put failed", "err", err)
		return u
	}
	u.AudioURL = h.urls.Absolute(c.Request, PathAudioFiles+"/"+id)
	return u
}

const (
	reasonUnknownCall       = "unknown call sid"
	reasonInvalidForm       = "invalid form"
	reasonLedgerUnavailable = "ledger unavailable"
)

// provenanceLevel raises canned-text turns to warn so they stand out in logs.
func provenanceLevel(prov voiceai.Provenance) slog.Level {
	if prov.IsFallback() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

func ignored(reason string) gin.H {
	return gin.H{"status": "ignored", "reason": reason}
}

func ledgerFailure(log *slog.Logger, msg, callSid string, err error) gin.H {
	if errors.Is(err, calls.ErrNotFound) {
		return ignored(reasonUnknownCall)
	}
	log.Error(msg, "call_sid", callSid, "err", err)
	return ignored(reasonLedgerUnavailable)
}

func writeTwiML(c *gin.Context, doc string, err error) {
	if err != nil {
		logger.FromGin(c).Error("twiml render failed", "err", err)
		doc = fallbackDocument
	}
	c.Data(http.StatusOK, "application/xml", []byte(doc))
}
