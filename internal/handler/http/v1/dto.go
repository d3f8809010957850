package v1

import (
	"time"

	"github.com/google/uuid"
)

// IncidentsQuery параметры списка инцидентов
type IncidentsQuery struct {
	Displayable bool `form:"displayable"`
}

// UnitsQuery параметры списка подразделений
type UnitsQuery struct {
	Station string `form:"station" validate:"omitempty,max=128"`
}

// HistoryQuery параметры журнала оповещений
type HistoryQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=500"`
}

// AssignmentResponse DTO назначения подразделения на инцидент
// @Description DTO назначения подразделения на инцидент
type AssignmentResponse struct {
	RadioName  string     `json:"radio_name"`
	StatusID   *int       `json:"status_id,omitempty"`
	StatusCode string     `json:"status_code,omitempty"`
	Station    string     `json:"station,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	OnCall     bool       `json:"on_call"`
}

// CommentResponse DTO комментария диспетчера
// @Description DTO комментария диспетчера
type CommentResponse struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Author    string     `json:"author,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID           int64                `json:"id"`
	Number       string               `json:"number"`
	IsActive     bool                 `json:"is_active"`
	Displayable  bool                 `json:"displayable"`
	IncidentType string               `json:"incident_type,omitempty"`
	Problem      string               `json:"problem,omitempty"`
	Nature       string               `json:"nature,omitempty"`
	CallType     string               `json:"call_type,omitempty"`
	Priority     string               `json:"priority,omitempty"`
	AlarmLevel   int                  `json:"alarm_level,omitempty"`
	Address      string               `json:"address,omitempty"`
	LocationName string               `json:"location_name,omitempty"`
	CrossStreet  string               `json:"cross_street,omitempty"`
	City         string               `json:"city,omitempty"`
	Jurisdiction string               `json:"jurisdiction,omitempty"`
	Latitude     *float64             `json:"latitude,omitempty"`
	Longitude    *float64             `json:"longitude,omitempty"`
	ResponseDate *time.Time           `json:"response_date,omitempty"`
	Units        []AssignmentResponse `json:"units"`
	Comments     []CommentResponse    `json:"comments"`
}

// AlertResponse DTO инцидента в состоянии оповещения
// @Description DTO инцидента в состоянии оповещения
type AlertResponse struct {
	Incident       IncidentResponse `json:"incident"`
	ElapsedSeconds int              `json:"elapsed_seconds"`
}

// AlertEventResponse DTO записи журнала оповещений
// @Description DTO записи журнала оповещений
type AlertEventResponse struct {
	ID             uuid.UUID `json:"id"`
	EpisodeID      uuid.UUID `json:"episode_id"`
	Event          string    `json:"event"`
	IncidentID     int64     `json:"incident_id"`
	IncidentNumber string    `json:"incident_number,omitempty"`
	Station        string    `json:"station"`
	Units          []string  `json:"units"`
	Reason         string    `json:"reason,omitempty"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	At             time.Time `json:"at"`
}

// UnitResponse DTO подразделения из реестра
// @Description DTO подразделения из реестра
type UnitResponse struct {
	RadioName      string `json:"radio_name"`
	CurrentStation string `json:"current_station,omitempty"`
	HomeStation    string `json:"home_station,omitempty"`
	StatusID       *int   `json:"status_id,omitempty"`
	StatusCode     string `json:"status_code,omitempty"`
	UnitType       string `json:"unit_type,omitempty"`
	IncidentID     *int64 `json:"incident_id,omitempty"`
}

// UnitsToAlertResponse DTO списка подразделений станции для оповещения
// @Description DTO списка подразделений станции для оповещения
type UnitsToAlertResponse struct {
	Units []string `json:"units"`
}

// HealthResponse DTO состояния сессии
// @Description DTO состояния сессии
type HealthResponse struct {
	Status       string     `json:"status"`
	Station      string     `json:"station"`
	Connection   string     `json:"connection"`
	Loading      bool       `json:"loading"`
	LastError    string     `json:"last_error,omitempty"`
	LastLoadedAt *time.Time `json:"last_loaded_at,omitempty"`
	Incidents    int        `json:"incidents"`
	Units        int        `json:"units"`
	Alerts       int        `json:"alerts"`
}
