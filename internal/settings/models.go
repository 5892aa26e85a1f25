package settings

import (
	"errors"
	"time"

	"voice-agent-platform/pkg/utils"
)

// Settings is the platform-wide singleton holding provider credentials and
// call-flow toggles. Exactly one row exists once Get has been called.
type Settings struct {
	OpenAIAPIKey     string `json:"openaiApiKey"`
	DeepgramAPIKey   string `json:"deepgramApiKey"`
	TwilioAccountSID string `json:"twilioAccountSid"`
	RimeAPIKey       string `json:"rimeApiKey"`

	EnableBargeInInterruption        bool `json:"enableBargeInInterruption"`
	PlayLatencyFillerPhraseOnTimeout bool `json:"playLatencyFillerPhraseOnTimeout"`
	AllowAutoRetryOnFailedCalls      bool `json:"allowAutoRetryOnFailedCalls"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Masked returns a copy safe to hand back to API clients.
func (s Settings) Masked() Settings {
	s.OpenAIAPIKey = utils.MaskSecret(s.OpenAIAPIKey)
	s.DeepgramAPIKey = utils.MaskSecret(s.DeepgramAPIKey)
	s.TwilioAccountSID = utils.MaskSecret(s.TwilioAccountSID)
	s.RimeAPIKey = utils.MaskSecret(s.RimeAPIKey)
	return s
}

// Patch is a partial update; only Set fields are considered.
type Patch struct {
	OpenAIAPIKey     utils.Optional[string] `json:"openaiApiKey"`
	DeepgramAPIKey   utils.Optional[string] `json:"deepgramApiKey"`
	TwilioAccountSID utils.Optional[string] `json:"twilioAccountSid"`
	RimeAPIKey       utils.Optional[string] `json:"rimeApiKey"`

	EnableBargeInInterruption        utils.Optional[bool] `json:"enableBargeInInterruption"`
	PlayLatencyFillerPhraseOnTimeout utils.Optional[bool] `json:"playLatencyFillerPhraseOnTimeout"`
	AllowAutoRetryOnFailedCalls      utils.Optional[bool] `json:"allowAutoRetryOnFailedCalls"`
}

// Field names as they appear in audit entries.
const (
	FieldOpenAIAPIKey                     = "openaiApiKey"
	FieldDeepgramAPIKey                   = "deepgramApiKey"
	FieldTwilioAccountSID                 = "twilioAccountSid"
	FieldRimeAPIKey                       = "rimeApiKey"
	FieldEnableBargeInInterruption        = "enableBargeInInterruption"
	FieldPlayLatencyFillerPhraseOnTimeout = "playLatencyFillerPhraseOnTimeout"
	FieldAllowAutoRetryOnFailedCalls      = "allowAutoRetryOnFailedCalls"
)

var ErrValidation = errors.New("settings: validation failed")
