package telephony

import (
	"net/http"
	"strings"

	"voice-agent-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/client"
)

const signatureHeader = "X-Twilio-Signature"

// URLBuilder produces the absolute URLs handed back to Twilio in TwiML.
// Twilio only fetches over https, so a request-derived base always uses it.
type URLBuilder struct {
	PublicBaseURL string
}

func (b URLBuilder) Base(r *http.Request) string {
	if base := strings.TrimRight(strings.TrimSpace(b.PublicBaseURL), "/"); base != "" {
		return base
	}
	host := r.Host
	if fwd := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-Host"), ",")[0]); fwd != "" {
		host = fwd
	}
	return "https://" + host
}

func (b URLBuilder) Absolute(r *http.Request, path string) string {
	return b.Base(r) + path
}

// RequireTwilioSignature rejects webhook requests whose X-Twilio-Signature
// does not match the auth token. It must run before any handler reads the form.
func RequireTwilioSignature(authToken string, urls URLBuilder) gin.HandlerFunc {
	validator := client.NewRequestValidator(authToken)
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
			return
		}
		sig := c.GetHeader(signatureHeader)
		url := urls.Absolute(c.Request, c.Request.URL.RequestURI())
		if sig == "" || !validator.Validate(url, formParams(c.Request), sig) {
			logger.FromGin(c).Warn("twilio signature rejected", "url", url)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid twilio signature"})
			return
		}
		c.Next()
	}
}
