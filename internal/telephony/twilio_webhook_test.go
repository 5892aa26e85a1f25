package telephony

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseWebhookForm(t *testing.T) {
	form := url.Values{
		"CallSid":           {" CA123 "},
		"From":              {"+15551234567"},
		"To":                {"+15557654321"},
		"SpeechResult":      {"I need to reschedule"},
		"CallStatus":        {"completed"},
		"CallDuration":      {"42"},
		"RecordingUrl":      {" https://api.twilio.com/rec/RE1 "},
		"RecordingDuration": {"40"},
	}
	req := httptest.NewRequest(http.MethodPost, "/twilio/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := ParseWebhookForm(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.CallSid != "CA123" || got.RecordingURL != "https://api.twilio.com/rec/RE1" {
		t.Fatalf("expected trimmed ids, got %+v", got)
	}
	if got.SpeechResult != "I need to reschedule" || got.CallDuration != "42" || got.RecordingDuration != "40" {
		t.Fatalf("unexpected form: %+v", got)
	}
	if p := formParams(req); p["CallSid"] != " CA123 " || len(p) != len(form) {
		t.Fatalf("expected raw first values for signing, got %v", p)
	}
}

func TestParseSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"", 0, false},
		{"4.5", 0, false},
		{"-3", -3, true},
	}
	for _, tc := range cases {
		got, ok := parseSeconds(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseSeconds(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
