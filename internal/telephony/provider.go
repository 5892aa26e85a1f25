package telephony

import (
	"context"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/calls"
	"voice-agent-platform/internal/settings"
	"voice-agent-platform/internal/voiceai"
)

// Dependencies the webhook flow needs. Handlers never touch storage or
// provider SDKs directly; they only orchestrate these.
//
// Rules:
// - Every collaborator failure must still produce a well-formed TwiML document.
// - Provider credentials are read once per request from settings.

type AgentFinder interface {
	FindByNumber(ctx context.Context, dialed string) (agents.Agent, error)
}

type SessionLedger interface {
	GetOrCreate(ctx context.Context, callSid, agentName, callerNumber string) (calls.Session, bool, error)
	Get(ctx context.Context, callSid string) (calls.Session, error)
	UpdateSentiment(ctx context.Context, callSid string, sentiment calls.Sentiment) (calls.Session, error)
	UpdateRecording(ctx context.Context, callSid, url string, durationSeconds int) (calls.Session, error)
	UpdateStatus(ctx context.Context, callSid string, status calls.Status, durationSeconds int, url string) (calls.Session, error)
}

type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

type TextGenerator interface {
	GenerateGreeting(ctx context.Context, a agents.Agent, callerNumber, apiKey string) (string, voiceai.Provenance)
	GenerateReply(ctx context.Context, a agents.Agent, utterance, apiKey string) (string, voiceai.Provenance)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, credential string) (voiceai.Audio, bool)
}

// Phase names where a call sits in the webhook-driven conversation.
// Each Twilio callback advances the call by exactly one phase.
type Phase string

const (
	PhaseRinging   Phase = "ringing"
	PhaseGathering Phase = "gathering"
	PhaseFinishing Phase = "finishing"
	PhaseTerminal  Phase = "terminal"
)

// Next returns the phase that follows p. Terminal is absorbing.
func (p Phase) Next() Phase {
	switch p {
	case PhaseRinging:
		return PhaseGathering
	case PhaseGathering:
		return PhaseFinishing
	default:
		return PhaseTerminal
	}
}
