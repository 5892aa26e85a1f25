package main

import (
	"net/http"
	"time"

	"voice-agent-platform/internal/auth"
	"voice-agent-platform/internal/config"
	"voice-agent-platform/internal/rbac"
	"voice-agent-platform/internal/telephony"
	"voice-agent-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, cfg config.Config, d dependencies) {
	h := d.api

	// public
	r.GET("/health", h.Health)
	r.GET("/ready", func(c *gin.Context) {
		if d.db != nil {
			if err := utils.HealthCheck(c.Request.Context(), d.db, 2*time.Second); err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider webhooks. Twilio fetches audio with a plain GET, so only the
	// callbacks are signature-checked.
	tw := r.Group("")
	{
		w := d.webhooks
		tw.GET(telephony.PathAudioFiles+"/:id", w.HandleAudio)

		callbacks := tw.Group("")
		if cfg.Twilio.ValidateSignatures {
			urls := telephony.URLBuilder{PublicBaseURL: cfg.App.PublicBaseURL}
			callbacks.Use(telephony.RequireTwilioSignature(cfg.Twilio.AuthToken, urls))
		}
		callbacks.POST(telephony.PathVoice, w.HandleVoice)
		callbacks.POST(telephony.PathGather, w.HandleGather)
		callbacks.POST(telephony.PathVoiceEnd, w.HandleVoiceFinish)
		callbacks.POST(telephony.PathRecording, w.HandleRecording)
		callbacks.POST(telephony.PathStatus, w.HandleStatus)
	}

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	// protected API group
	protected := api.Group("")
	protected.Use(auth.RequireAuth(h.Auth))
	read := rbac.RequireAnyRole(rbac.ReadRoles...)
	write := rbac.RequireAnyRole(rbac.WriteRoles...)
	{
		protected.GET("/organizations", read, h.ListOrganizations)

		protected.GET("/agents", read, h.ListAgents)
		protected.POST("/agents", write, h.CreateAgent)
		protected.PATCH("/agents/:id", write, h.UpdateAgent)
		protected.DELETE("/agents/:id", write, h.DeleteAgent)

		protected.GET("/calls", read, h.ListCalls)

		protected.GET("/dashboard/overview", read, h.DashboardOverview)
		protected.GET("/dashboard/usage", read, h.DashboardUsage)

		protected.GET("/settings", read, h.GetSettings)
		protected.PATCH("/settings", write, h.UpdateSettings)
		protected.GET("/settings/history", read, h.SettingsHistory)
		protected.GET("/settings/history/meta", read, h.SettingsHistoryMeta)
	}
}
