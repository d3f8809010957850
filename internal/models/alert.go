package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertEventType - тип перехода состояния оповещения
type AlertEventType string

const (
	AlertRaised  AlertEventType = "raised"
	AlertCleared AlertEventType = "cleared"
)

// Причины снятия оповещения
const (
	ReasonDismissed = "dismissed"
	ReasonTimeout   = "timeout"
)

// AlertEvent - запись о поднятии или снятии оповещения по инциденту
type AlertEvent struct {
	ID             uuid.UUID      `json:"id"`
	EpisodeID      uuid.UUID      `json:"episode_id"`
	Type           AlertEventType `json:"type"`
	IncidentID     IncidentID     `json:"incident_id"`
	IncidentNumber string         `json:"incident_number,omitempty"`
	Station        string         `json:"station"`
	Units          []string       `json:"units,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	ElapsedSeconds int            `json:"elapsed_seconds"`
	At             time.Time      `json:"at"`
}

// AlertedIncident - инцидент в списке оповещений вместе с его счётчиком
type AlertedIncident struct {
	Incident       *Incident `json:"incident"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
}
