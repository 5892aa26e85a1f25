package agents

import (
	"errors"
	"time"

	"voice-agent-platform/pkg/utils"
)

// Agent is a configured voice agent answering one Twilio number.
//
// Invariants:
// - ID has the form agent-{n}; ids are never reused after deletion.
// - TwilioNumber is matched on digits only.
type Agent struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	OrganizationName string `json:"organizationName"`
	Model            string `json:"model"`
	VoiceID          string `json:"voiceId"`
	TwilioNumber     string `json:"twilioNumber"`
	Status           Status `json:"status"`
	Prompt           string `json:"prompt"`
	PromptVersion    string `json:"promptVersion"`
	AverageLatencyMs int    `json:"averageLatencyMs"`

	UpdatedAt time.Time `json:"-"`
}

type Status string

const (
	StatusActive  Status = "active"
	StatusOffline Status = "offline"
	StatusError   Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOffline, StatusError:
		return true
	default:
		return false
	}
}

// Input is the create payload.
type Input struct {
	Name             string `json:"name"`
	OrganizationName string `json:"organizationName"`
	Model            string `json:"model"`
	VoiceID          string `json:"voiceId"`
	TwilioNumber     string `json:"twilioNumber"`
	Status           Status `json:"status"`
	Prompt           string `json:"prompt"`
	PromptVersion    string `json:"promptVersion"`
	AverageLatencyMs int    `json:"averageLatencyMs"`
}

// Patch is a partial update. Only fields with Set=true are applied.
type Patch struct {
	Name             utils.Optional[string] `json:"name"`
	OrganizationName utils.Optional[string] `json:"organizationName"`
	Model            utils.Optional[string] `json:"model"`
	VoiceID          utils.Optional[string] `json:"voiceId"`
	TwilioNumber     utils.Optional[string] `json:"twilioNumber"`
	Status           utils.Optional[Status] `json:"status"`
	Prompt           utils.Optional[string] `json:"prompt"`
	PromptVersion    utils.Optional[string] `json:"promptVersion"`
	AverageLatencyMs utils.Optional[int]    `json:"averageLatencyMs"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Status           Status
	OrganizationName string
}

const (
	defaultPrompt        = "You are a helpful, concise phone assistant. Keep answers short and friendly."
	defaultPromptVersion = "v1"
)

var (
	ErrNotFound        = errors.New("agent not found")
	ErrNoAgents        = errors.New("no agents configured")
	ErrInvalidArgument = errors.New("invalid argument")
)
