package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check, без аутентификации
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("")
	if len(h.cfg.APIKeys) > 0 {
		protected.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	} else {
		h.logger.Warn("API_KEYS is empty, API authentication is disabled")
	}

	incidents := protected.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
	}

	alerts := protected.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.GET("/history", h.alertHistory)
		alerts.DELETE("/:id", h.dismissAlert)
	}

	units := protected.Group("/units")
	{
		units.GET("", h.listUnits)
		units.GET("/alerting", h.unitsToAlert)
	}

	protected.POST("/snapshots/resync", h.resync)
}
