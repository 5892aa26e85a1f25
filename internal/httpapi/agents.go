package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"voice-agent-platform/internal/agents"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListAgents(c *gin.Context) {
	out, err := h.Agents.List(c.Request.Context(), agents.Filter{
		Status:           agents.Status(strings.TrimSpace(c.Query("status"))),
		OrganizationName: c.Query("organizationName"),
	})
	if err != nil {
		h.agentError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateAgent(c *gin.Context) {
	var in agents.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Agents.Create(c.Request.Context(), in)
	if err != nil {
		h.agentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h Handlers) UpdateAgent(c *gin.Context) {
	var p agents.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Agents.Update(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.agentError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAgent responds with the removed agent.
func (h Handlers) DeleteAgent(c *gin.Context) {
	a, err := h.Agents.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.agentError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h Handlers) agentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, agents.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
	case agents.IsValidation(err):
		unprocessable(c, err)
	default:
		internalError(c, "agent operation failed", err)
	}
}
