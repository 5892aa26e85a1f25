package telephony

import (
	"github.com/twilio/twilio-go/twiml"
)

const (
	sayVoice = "alice"

	gatherPrompt      = "Please tell me how I can help."
	noInputGoodbye    = "I did not hear anything. Goodbye."
	finishGoodbye     = "Thank you. Your message was recorded successfully. Goodbye."
	unavailableNotice = "We are sorry, no voice agent is available to take your call right now. Goodbye."
	fillerPhrase      = "Thanks for waiting, one moment."
)

// Utterance is something the caller hears: cached audio when AudioURL is set,
// otherwise Twilio's own text-to-speech of Text.
type Utterance struct {
	Text     string
	AudioURL string
}

func (u Utterance) element() twiml.Element {
	if u.AudioURL != "" {
		return &twiml.VoicePlay{Url: u.AudioURL}
	}
	return say(u.Text)
}

func say(text string) twiml.Element {
	return &twiml.VoiceSay{Message: text, Voice: sayVoice}
}

// RenderGreeting answers the ringing phase. With bargeIn the greeting is
// nested in the Gather so speech interrupts it.
func RenderGreeting(greeting Utterance, gatherURL string, bargeIn bool) (string, error) {
	inner := []twiml.Element{say(gatherPrompt)}
	if bargeIn {
		inner = append([]twiml.Element{greeting.element()}, inner...)
	}
	gather := &twiml.VoiceGather{
		Input:         "speech",
		SpeechTimeout: "auto",
		Timeout:       "4",
		Action:        gatherURL,
		Method:        "POST",
		InnerElements: inner,
	}

	var verbs []twiml.Element
	if !bargeIn {
		verbs = append(verbs, greeting.element())
	}
	verbs = append(verbs, gather, say(noInputGoodbye), &twiml.VoiceHangup{})
	return twiml.Voice(verbs)
}

// RenderReply answers the gathering phase and hands the call to voice-finish.
func RenderReply(reply Utterance, withFiller bool, finishURL string) (string, error) {
	var verbs []twiml.Element
	if withFiller {
		verbs = append(verbs, say(fillerPhrase))
	}
	verbs = append(verbs, reply.element(), &twiml.VoiceRedirect{Url: finishURL, Method: "POST"})
	return twiml.Voice(verbs)
}

func RenderFinish() (string, error) {
	return twiml.Voice([]twiml.Element{say(finishGoodbye), &twiml.VoiceHangup{}})
}

// RenderUnavailable is returned when no agent can take the call.
func RenderUnavailable() (string, error) {
	return twiml.Voice([]twiml.Element{say(unavailableNotice), &twiml.VoiceHangup{}})
}

// fallbackDocument is written when rendering itself fails so Twilio always
// receives a playable response.
const fallbackDocument = `<?xml version="1.0" encoding="UTF-8"?><Response><Say voice="alice">` +
	unavailableNotice + `</Say><Hangup/></Response>`
