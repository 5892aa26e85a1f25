package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"voice-agent-platform/internal/audit"
	"voice-agent-platform/internal/settings"
	"voice-agent-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// updateSettingsRequest carries the patch plus who made it and why.
type updateSettingsRequest struct {
	settings.Patch
	AuditActor   *string `json:"auditActor"`
	ChangeReason *string `json:"changeReason"`
}

func (h Handlers) GetSettings(c *gin.Context) {
	s, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		internalError(c, "settings lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, s.Masked())
}

func (h Handlers) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	actor := audit.DefaultActor
	if req.AuditActor != nil && strings.TrimSpace(*req.AuditActor) != "" {
		actor = strings.TrimSpace(*req.AuditActor)
	}
	var reason string
	if req.ChangeReason != nil {
		reason = *req.ChangeReason
	}

	s, changed, err := h.Settings.Update(c.Request.Context(), req.Patch, actor, reason)
	if err != nil {
		if errors.Is(err, settings.ErrValidation) {
			unprocessable(c, err)
			return
		}
		internalError(c, "settings update failed", err)
		return
	}
	if len(changed) > 0 {
		logger.FromGin(c).Info("settings updated", "actor", actor, "changed_fields", changed)
	}
	c.JSON(http.StatusOK, s.Masked())
}

func (h Handlers) SettingsHistory(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	out, err := h.Settings.History(c.Request.Context(), audit.HistoryRequest{
		Actor:        strings.TrimSpace(c.Query("actor")),
		ChangedField: strings.TrimSpace(c.Query("changedField")),
		FromDate:     strings.TrimSpace(c.Query("fromDate")),
		ToDate:       strings.TrimSpace(c.Query("toDate")),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) SettingsHistoryMeta(c *gin.Context) {
	out, err := h.Settings.HistoryMeta(c.Request.Context(),
		strings.TrimSpace(c.Query("fromDate")),
		strings.TrimSpace(c.Query("toDate")),
	)
	if err != nil {
		historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func historyError(c *gin.Context, err error) {
	if errors.Is(err, audit.ErrInvalidFilter) {
		unprocessable(c, err)
		return
	}
	internalError(c, "settings history lookup failed", err)
}
