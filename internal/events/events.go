package events

import (
	"encoding/json"

	"github.com/shenikar/station_dashboard/internal/models"
)

// Event - каноническое событие, полученное от хаба диспетчерской
type Event interface {
	// Name - имя события для логов и метрик
	Name() string
}

// IncidentAdded - новый инцидент или полное состояние известного
type IncidentAdded struct {
	Incident *models.Incident
}

// IncidentUpdated - изменилось одно поле инцидента
type IncidentUpdated struct {
	IncidentID models.IncidentID
	Field      string
	Value      json.RawMessage
}

// IncidentRemoved - инцидент закрыт
type IncidentRemoved struct {
	IncidentID models.IncidentID
}

// IncidentsRemoved - закрыто несколько инцидентов
type IncidentsRemoved struct {
	IncidentIDs []models.IncidentID
}

// IncidentUnitUpdated - изменилось назначение подразделения на инцидент.
// Fields содержит только присланные поля, имена в lowerCamelCase.
type IncidentUnitUpdated struct {
	IncidentID models.IncidentID
	RadioName  string
	Fields     map[string]json.RawMessage
}

// UnitFields - производные изменения реестра подразделений, по одному на поле
func (e IncidentUnitUpdated) UnitFields() []UnitUpdated {
	out := make([]UnitUpdated, 0, len(e.Fields))
	for field, value := range e.Fields {
		if field == "radioName" {
			continue
		}
		out = append(out, UnitUpdated{RadioName: e.RadioName, Field: field, Value: value})
	}
	return out
}

// IncidentCommentAdded - к инциденту добавлен комментарий
type IncidentCommentAdded struct {
	IncidentID models.IncidentID
	Comment    models.Comment
}

// UnitUpdated - изменилось поле подразделения в реестре
type UnitUpdated struct {
	RadioName string
	Field     string
	Value     json.RawMessage
}

// GroupMessage - произвольное сообщение группы, только логируется
type GroupMessage struct {
	Group   string
	User    string
	Message string
}

// Disconnected - соединение с хабом потеряно
type Disconnected struct {
	Err error
}

func (IncidentAdded) Name() string        { return "incident-added" }
func (IncidentUpdated) Name() string      { return "incident-updated" }
func (IncidentRemoved) Name() string      { return "incident-removed" }
func (IncidentsRemoved) Name() string     { return "incidents-removed" }
func (IncidentUnitUpdated) Name() string  { return "incident-unit-updated" }
func (IncidentCommentAdded) Name() string { return "incident-comment-added" }
func (UnitUpdated) Name() string          { return "unit-updated" }
func (GroupMessage) Name() string         { return "group-message-received" }
func (Disconnected) Name() string         { return "disconnected" }
