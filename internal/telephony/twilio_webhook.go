package telephony

import (
	"net/http"
	"strconv"
	"strings"
)

// WebhookForm captures the subset of Twilio voice callback fields we use.
// Twilio sends application/x-www-form-urlencoded.
// Ref: https://www.twilio.com/docs/voice/twiml#request-parameters
type WebhookForm struct {
	CallSid           string
	From              string
	To                string
	SpeechResult      string
	CallStatus        string
	CallDuration      string
	RecordingURL      string
	RecordingDuration string
}

func ParseWebhookForm(r *http.Request) (WebhookForm, error) {
	if err := r.ParseForm(); err != nil {
		return WebhookForm{}, err
	}
	return WebhookForm{
		CallSid:           strings.TrimSpace(r.PostFormValue("CallSid")),
		From:              strings.TrimSpace(r.PostFormValue("From")),
		To:                strings.TrimSpace(r.PostFormValue("To")),
		SpeechResult:      r.PostFormValue("SpeechResult"),
		CallStatus:        r.PostFormValue("CallStatus"),
		CallDuration:      r.PostFormValue("CallDuration"),
		RecordingURL:      strings.TrimSpace(r.PostFormValue("RecordingUrl")),
		RecordingDuration: r.PostFormValue("RecordingDuration"),
	}, nil
}

// formParams flattens the posted form for signature validation.
// Twilio signs only the first value of each key.
func formParams(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// parseSeconds reads a Twilio duration field. ok is false for blank or
// non-integer input so callers can keep the stored value.
func parseSeconds(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
