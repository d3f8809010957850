package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/station_dashboard/internal/config"
	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	dashboard service.DashboardService
	logger    *logrus.Logger
	validate  *validator.Validate
	cfg       *config.Config
}

func NewHandler(dashboard service.DashboardService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		dashboard: dashboard,
		logger:    logger,
		validate:  validator.New(),
		cfg:       cfg,
	}
}

// @Summary Get a list of incidents
// @Description Get incidents known to the station dashboard, most recent first. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param displayable query bool false "Only incidents with a number and assigned units"
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Session closed"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	var query IncidentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	incidents, err := h.dashboard.Incidents(c.Request.Context(), query.Displayable)
	if err != nil {
		h.serviceError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its CAD ID. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := models.ParseIncidentID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.dashboard.Incident(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get alerted incidents
// @Description Get incidents currently alerting the station with their elapsed seconds. Requires API key.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} AlertResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Session closed"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")

	alerts, err := h.dashboard.Alerts(c.Request.Context())
	if err != nil {
		h.serviceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AlertsToResponses(alerts))
}

// @Summary Dismiss an alert
// @Description Operator dismissal of an alerted incident. Requires API key.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Incident ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident is not alerted"
// @Router /alerts/{id} [delete]
func (h *Handler) dismissAlert(c *gin.Context) {
	id, err := models.ParseIncidentID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "dismissAlert").WithField("id", id)

	if err := h.dashboard.DismissAlert(c.Request.Context(), id); err != nil {
		h.serviceError(c, log, err)
		return
	}
	log.Info("Alert dismissed by operator")
	c.Status(http.StatusNoContent)
}

// @Summary Get alert history
// @Description Get the most recent raised/cleared alert transitions. Requires API key and DATABASE_URL.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of records" default(50)
// @Success 200 {array} AlertEventResponse
// @Failure 400 {object} map[string]string "Invalid query or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Alert history is disabled"
// @Router /alerts/history [get]
func (h *Handler) alertHistory(c *gin.Context) {
	log := h.logger.WithField("method", "alertHistory")

	var query HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.dashboard.AlertHistory(c.Request.Context(), query.Limit)
	if err != nil {
		h.serviceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AlertEventsToResponses(events))
}

// @Summary Get units
// @Description Get the unit roster sorted by radio name, optionally for one station. Requires API key.
// @Tags Units
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param station query string false "Current station"
// @Success 200 {array} UnitResponse
// @Failure 400 {object} map[string]string "Invalid query or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /units [get]
func (h *Handler) listUnits(c *gin.Context) {
	log := h.logger.WithField("method", "listUnits")

	var query UnitsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	units, err := h.dashboard.Units(c.Request.Context(), query.Station)
	if err != nil {
		h.serviceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, UnitsToResponses(units))
}

// @Summary Get units to alert
// @Description Get radio names of units at the configured station. Requires API key.
// @Tags Units
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} UnitsToAlertResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /units/alerting [get]
func (h *Handler) unitsToAlert(c *gin.Context) {
	log := h.logger.WithField("method", "unitsToAlert")

	units, err := h.dashboard.UnitsToAlert(c.Request.Context())
	if err != nil {
		h.serviceError(c, log, err)
		return
	}
	if units == nil {
		units = []string{}
	}
	c.JSON(http.StatusOK, UnitsToAlertResponse{Units: units})
}

// @Summary Reload snapshots
// @Description Fetch incident and unit snapshots and replace the session state. Requires API key.
// @Tags System
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Snapshot source failed"
// @Router /snapshots/resync [post]
func (h *Handler) resync(c *gin.Context) {
	log := h.logger.WithField("method", "resync")

	if err := h.dashboard.Resync(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrSessionClosed) {
			h.serviceError(c, log, err)
			return
		}
		log.WithError(err).Error("Failed to resync snapshots")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load snapshots"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get application health status
// @Description Get hub connection and snapshot status of the station session
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse "Connected and loaded"
// @Failure 503 {object} HealthResponse "Disconnected or loading"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	status, err := h.dashboard.Status(c.Request.Context())
	if err != nil {
		h.serviceError(c, h.logger.WithField("method", "healthCheck"), err)
		return
	}

	resp := StatusToHealthResponse(status)
	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// serviceError сопоставляет ошибки сессии с HTTP-статусами
func (h *Handler) serviceError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrIncidentNotFound):
		log.WithError(err).Warn("Incident not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	case errors.Is(err, service.ErrNotAlerted):
		log.WithError(err).Warn("Incident is not alerted")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident is not alerted"})
	case errors.Is(err, service.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert history is disabled"})
	case errors.Is(err, service.ErrSessionClosed):
		log.WithError(err).Warn("Dashboard session is closed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dashboard session is closed"})
	default:
		log.WithError(err).Error("Dashboard service failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
