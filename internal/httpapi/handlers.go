package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/auth"
	"voice-agent-platform/internal/calls"
	"voice-agent-platform/internal/organizations"
	"voice-agent-platform/internal/reporting"
	"voice-agent-platform/internal/settings"
	"voice-agent-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Service     string
	Environment string

	Auth          *auth.Authenticator
	Agents        *agents.Directory
	Calls         *calls.Ledger
	Organizations *organizations.Service
	Dashboard     *reporting.Service
	Settings      *settings.Store
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     h.Service,
		"environment": h.Environment,
	})
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		logger.FromGin(c).Error("login failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Organizations ---

func (h Handlers) ListOrganizations(c *gin.Context) {
	out, err := h.Organizations.List(c.Request.Context(), c.Query("subscriptionStatus"))
	if err != nil {
		if errors.Is(err, organizations.ErrInvalidArgument) {
			unprocessable(c, err)
			return
		}
		internalError(c, "organization lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Calls ---

func (h Handlers) ListCalls(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := h.Calls.List(c.Request.Context(), calls.Filter{
		Status:    calls.Status(strings.TrimSpace(c.Query("status"))),
		AgentName: strings.TrimSpace(c.Query("agentName")),
		Limit:     limit,
	})
	if err != nil {
		if errors.Is(err, calls.ErrInvalidArgument) {
			unprocessable(c, err)
			return
		}
		internalError(c, "call lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Dashboard ---

func (h Handlers) DashboardOverview(c *gin.Context) {
	out, err := h.Dashboard.Overview(c.Request.Context())
	if err != nil {
		internalError(c, "dashboard unavailable", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DashboardUsage(c *gin.Context) {
	out, err := h.Dashboard.Usage(c.Request.Context())
	if err != nil {
		internalError(c, "dashboard unavailable", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers ---

// queryInt reads an optional integer query parameter. A malformed value
// aborts with 422 and ok=false; an absent one yields 0.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": key + " must be an integer"})
		return 0, false
	}
	return n, true
}

func unprocessable(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}

func internalError(c *gin.Context, msg string, err error) {
	logger.FromGin(c).Error(msg, "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
}
