package calls

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Session is one inbound phone call, keyed by the Twilio CallSid.
//
// Invariants:
// - CallSid is unique; a second create for the same sid is a lookup.
// - Sessions are never deleted.
// - Recording callbacks never decrease DurationSeconds.
type Session struct {
	Seq     int64  `json:"-"`
	CallSid string `json:"-"`

	AgentName       string    `json:"agentName"`
	CallerNumber    string    `json:"callerNumber"`
	StartedAt       time.Time `json:"-"`
	DurationSeconds int       `json:"durationSeconds"`
	Status          Status    `json:"status"`
	Sentiment       Sentiment `json:"sentiment"`
	RecordingURL    string    `json:"recordingUrl"`

	UpdatedAt time.Time `json:"-"`
}

// ID is the display id shown in the dashboard.
func (s Session) ID() string { return fmt.Sprintf("call-%d", s.Seq) }

const startedAtLayout = "2006-01-02 15:04"

func (s Session) MarshalJSON() ([]byte, error) {
	type plain Session
	return json.Marshal(struct {
		ID        string `json:"id"`
		StartedAt string `json:"startedAt"`
		plain
	}{
		ID:        s.ID(),
		StartedAt: s.StartedAt.UTC().Format(startedAtLayout),
		plain:     plain(s),
	})
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusBusy      Status = "busy"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusBusy, StatusFailed:
		return true
	default:
		return false
	}
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// MapProviderStatus folds Twilio's CallStatus vocabulary into Status.
// Unknown values map to busy.
func MapProviderStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed":
		return StatusCompleted
	case "busy", "no-answer", "canceled":
		return StatusBusy
	case "failed":
		return StatusFailed
	default:
		return StatusBusy
	}
}

// Filter narrows List. Limit <= 0 means no limit at the repository level.
type Filter struct {
	Status    Status
	AgentName string
	Since     time.Time
	Limit     int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var (
	ErrNotFound        = errors.New("call session not found")
	ErrDuplicate       = errors.New("call session already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)
