package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/station_dashboard/internal/config"
	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/internal/service"
	"github.com/shenikar/station_dashboard/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var authHeader = map[string]string{"X-API-Key": "test-api-key"}

// newTestHandler создает новый экземпляр Handler с мокированным сервисом
func newTestHandler(t *testing.T) (*Handler, *mocks.MockDashboardService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockDashboardService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockService, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testIncident(id models.IncidentID, number string) *models.Incident {
	statusID := 9
	return &models.Incident{
		ID:                   id,
		MasterIncidentNumber: &number,
		IsActive:             true,
		Problem:              "Structure Fire",
		Address:              "100 Main St",
		ResponseDate:         models.NewTimestamp(time.Date(2024, 3, 1, 9, 58, 0, 0, time.UTC)),
		UnitsAssigned: []models.UnitAssignment{
			{
				RadioName:     "E1",
				StatusID:      &statusID,
				Station:       "Station 9",
				StartDateTime: models.NewTimestamp(time.Date(2024, 3, 1, 9, 58, 30, 0, time.UTC)),
			},
		},
		Comments: []models.Comment{{ID: 7, Text: "Smoke showing"}},
	}
}

func TestListIncidents_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	expected := []*models.Incident{testIncident(2, "F24-2"), testIncident(1, "F24-1")}

	mockService.EXPECT().Incidents(gomock.Any(), false).Return(expected, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, int64(2), resp[0].ID)
	assert.Equal(t, "F24-2", resp[0].Number)
	assert.True(t, resp[0].Displayable)
	require.Len(t, resp[0].Units, 1)
	assert.Equal(t, "ST", resp[0].Units[0].StatusCode)
	assert.True(t, resp[0].Units[0].OnCall)
	require.Len(t, resp[0].Comments, 1)
	assert.Equal(t, "Smoke showing", resp[0].Comments[0].Text)
}

func TestListIncidents_Displayable(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Incidents(gomock.Any(), true).Return([]*models.Incident{}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?displayable=true", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListIncidents_InvalidQuery(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Incidents(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/incidents?displayable=maybe", nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid query")
}

func TestListIncidents_SessionClosed(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Incidents(gomock.Any(), false).Return(nil, service.ErrSessionClosed).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil, authHeader)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard session is closed")
}

func TestListIncidents_Unauthorized(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Incidents(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Incident(gomock.Any(), models.IncidentID(101)).Return(testIncident(101, "F24-101"), nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/101", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, int64(101), resp.ID)
	assert.Equal(t, "Structure Fire", resp.Problem)
	require.NotNil(t, resp.ResponseDate)
	assert.Equal(t, 58, resp.ResponseDate.Minute())
}

func TestGetIncident_InvalidID(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Incident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/incidents/not-a-number", nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Incident(gomock.Any(), models.IncidentID(5)).Return(nil, service.ErrIncidentNotFound).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/5", nil, authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestListAlerts_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	alerts := []models.AlertedIncident{{Incident: testIncident(3, "F24-3"), ElapsedSeconds: 12}}

	mockService.EXPECT().Alerts(gomock.Any()).Return(alerts, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, int64(3), resp[0].Incident.ID)
	assert.Equal(t, 12, resp[0].ElapsedSeconds)
}

func TestListAlerts_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Alerts(gomock.Any()).Return(nil, errors.New("boom")).Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts", nil, authHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestDismissAlert_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().DismissAlert(gomock.Any(), models.IncidentID(3)).Return(nil).Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/alerts/3", nil, authHeader)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDismissAlert_NotAlerted(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().DismissAlert(gomock.Any(), models.IncidentID(4)).Return(service.ErrNotAlerted).Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/alerts/4", nil, authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident is not alerted")
}

func TestDismissAlert_InvalidID(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().DismissAlert(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "DELETE", "/api/v1/alerts/abc", nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlertHistory_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	events := []models.AlertEvent{{
		ID:         uuid.New(),
		EpisodeID:  uuid.New(),
		Type:       models.AlertCleared,
		IncidentID: 3,
		Station:    "Station 9",
		Reason:     models.ReasonTimeout,
		At:         time.Now().UTC(),
	}}

	mockService.EXPECT().AlertHistory(gomock.Any(), 20).Return(events, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts/history?limit=20", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []AlertEventResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "cleared", resp[0].Event)
	assert.Equal(t, "timeout", resp[0].Reason)
	assert.NotNil(t, resp[0].Units)
}

func TestAlertHistory_DefaultLimit(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().AlertHistory(gomock.Any(), 0).Return([]models.AlertEvent{}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts/history", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAlertHistory_ValidationError(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().AlertHistory(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/alerts/history?limit=1000", nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Limit' failed on the 'max' tag")
}

func TestAlertHistory_Disabled(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().AlertHistory(gomock.Any(), 0).Return(nil, service.ErrHistoryDisabled).Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts/history", nil, authHeader)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "alert history is disabled")
}

func TestListUnits_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	statusID := 1
	incidentID := models.IncidentID(55)
	units := []*models.Unit{
		{RadioName: "E1", CurrentStation: "Station 9", StatusID: &statusID},
		{RadioName: "M7", CurrentStation: "Station 9", IncidentID: &incidentID},
	}

	mockService.EXPECT().Units(gomock.Any(), "Station 9").Return(units, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/units?station=Station%209", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []UnitResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, "AV", resp[0].StatusCode)
	require.NotNil(t, resp[1].IncidentID)
	assert.Equal(t, int64(55), *resp[1].IncidentID)
}

func TestUnitsToAlert_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().UnitsToAlert(gomock.Any()).Return(nil, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/units/alerting", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"units":[]}`, w.Body.String())
}

func TestResync_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Resync(gomock.Any()).Return(nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/snapshots/resync", nil, authHeader)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestResync_SnapshotFailed(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Resync(gomock.Any()).Return(errors.New("fetch incidents: 500")).Times(1)

	w := makeRequest(router, "POST", "/api/v1/snapshots/resync", nil, authHeader)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "failed to load snapshots")
}

func TestHealthCheck_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Status(gomock.Any()).Return(service.Status{
		Station:    "Station 9",
		Connection: "connected",
		Connected:  true,
		Incidents:  4,
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"incidents":4`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().Status(gomock.Any()).Return(service.Status{
		Station:    "Station 9",
		Connection: "disconnected",
		LastError:  "connection closed",
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), "connection closed")
}

func TestAPIKeyAuthMiddleware_Success(t *testing.T) {
	// Создаем Gin-роутер и добавляем middleware
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = makeRequest(router, "GET", "/test", nil, map[string]string{"Authorization": "Bearer valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_MissingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil) // Нет API ключа
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAPIKeyAuthMiddleware_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "invalid-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}

func TestRegisterRoutes_NoAPIKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockDashboardService(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(mockService, logger, &config.Config{}).RegisterRoutes(router.Group("/api/v1"))

	mockService.EXPECT().UnitsToAlert(gomock.Any()).Return([]string{"E1"}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/units/alerting", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"units":["E1"]}`, w.Body.String())
}
