package v1

import (
	"time"

	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/internal/service"
)

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) IncidentResponse {
	resp := IncidentResponse{
		ID:           int64(model.ID),
		Number:       model.Number(),
		IsActive:     model.IsActive,
		Displayable:  model.Displayable(),
		IncidentType: model.IncidentType,
		Problem:      model.Problem,
		Nature:       model.Nature,
		CallType:     model.CallType,
		Priority:     model.Priority,
		AlarmLevel:   model.AlarmLevel,
		Address:      model.Address,
		LocationName: model.LocationName,
		CrossStreet:  model.CrossStreet,
		City:         model.City,
		Jurisdiction: model.Jurisdiction,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		ResponseDate: toTime(model.ResponseDate),
		Units:        make([]AssignmentResponse, 0, len(model.UnitsAssigned)),
		Comments:     make([]CommentResponse, 0, len(model.Comments)),
	}
	for _, a := range model.UnitsAssigned {
		unit := AssignmentResponse{
			RadioName: a.RadioName,
			StatusID:  a.StatusID,
			Station:   a.Station,
			StartedAt: toTime(a.StartDateTime),
			EndedAt:   toTime(a.EndDateTime),
			OnCall:    a.OnCall(),
		}
		if a.StatusID != nil {
			unit.StatusCode = models.IncidentStatusCode(*a.StatusID)
		}
		resp.Units = append(resp.Units, unit)
	}
	for _, c := range model.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:        c.ID,
			Text:      c.Text,
			Author:    c.Author,
			CreatedAt: toTime(c.CreatedAt),
		})
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []IncidentResponse {
	responses := make([]IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func AlertsToResponses(alerts []models.AlertedIncident) []AlertResponse {
	responses := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = AlertResponse{
			Incident:       ModelToIncidentResponse(a.Incident),
			ElapsedSeconds: a.ElapsedSeconds,
		}
	}
	return responses
}

func AlertEventsToResponses(events []models.AlertEvent) []AlertEventResponse {
	responses := make([]AlertEventResponse, len(events))
	for i, e := range events {
		units := e.Units
		if units == nil {
			units = []string{}
		}
		responses[i] = AlertEventResponse{
			ID:             e.ID,
			EpisodeID:      e.EpisodeID,
			Event:          string(e.Type),
			IncidentID:     int64(e.IncidentID),
			IncidentNumber: e.IncidentNumber,
			Station:        e.Station,
			Units:          units,
			Reason:         e.Reason,
			ElapsedSeconds: e.ElapsedSeconds,
			At:             e.At,
		}
	}
	return responses
}

func UnitsToResponses(units []*models.Unit) []UnitResponse {
	responses := make([]UnitResponse, len(units))
	for i, u := range units {
		resp := UnitResponse{
			RadioName:      u.RadioName,
			CurrentStation: u.CurrentStation,
			HomeStation:    u.HomeStation,
			StatusID:       u.StatusID,
			UnitType:       u.UnitType,
		}
		if u.StatusID != nil {
			resp.StatusCode = models.StatusCode(*u.StatusID)
		}
		if u.IncidentID != nil {
			id := int64(*u.IncidentID)
			resp.IncidentID = &id
		}
		responses[i] = resp
	}
	return responses
}

// StatusToHealthResponse - "ok" только при подключении и загруженных снимках
func StatusToHealthResponse(s service.Status) HealthResponse {
	status := "ok"
	if !s.Connected || s.Loading {
		status = "degraded"
	}
	return HealthResponse{
		Status:       status,
		Station:      s.Station,
		Connection:   s.Connection,
		Loading:      s.Loading,
		LastError:    s.LastError,
		LastLoadedAt: s.LastLoadedAt,
		Incidents:    s.Incidents,
		Units:        s.Units,
		Alerts:       s.Alerts,
	}
}

func toTime(ts *models.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}
