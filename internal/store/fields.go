package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shenikar/station_dashboard/internal/models"
)

// ErrUnknownField - поле не входит в таблицу разрешённых для патча
var ErrUnknownField = errors.New("unknown field")

// setter применяет значение с провода к одному полю записи
type setter[T any] func(rec *T, raw json.RawMessage) error

// fieldTable - явное соответствие имени поля и функции установки
type fieldTable[T any] map[string]setter[T]

// apply устанавливает поле или возвращает ErrUnknownField
func (t fieldTable[T]) apply(rec *T, field string, raw json.RawMessage) error {
	set, ok := t[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if err := set(rec, raw); err != nil {
		return fmt.Errorf("field %s: %w", field, err)
	}
	return nil
}

// field строит setter для поля типа V
func field[T, V any](ptr func(*T) *V) setter[T] {
	return func(rec *T, raw json.RawMessage) error {
		var v V
		if err := decodeLenient(raw, &v); err != nil {
			return err
		}
		*ptr(rec) = v
		return nil
	}
}

// decodeLenient декодирует значение, которое CAD иногда присылает строкой
// ("42", "True") вместо числа или булева значения
func decodeLenient(raw json.RawMessage, dst any) error {
	err := json.Unmarshal(raw, dst)
	if err == nil {
		return nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return err
	}
	var s string
	if uerr := json.Unmarshal(trimmed, &s); uerr != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return json.Unmarshal([]byte("null"), dst)
	}
	if json.Unmarshal([]byte(s), dst) == nil {
		return nil
	}
	if json.Unmarshal([]byte(strings.ToLower(s)), dst) == nil {
		return nil
	}
	return err
}

var incidentFields = fieldTable[models.Incident]{
	"masterIncidentNumber": field(func(i *models.Incident) **string { return &i.MasterIncidentNumber }),
	"isActive":             field(func(i *models.Incident) *bool { return &i.IsActive }),
	"incidentType":         field(func(i *models.Incident) *string { return &i.IncidentType }),
	"problem":              field(func(i *models.Incident) *string { return &i.Problem }),
	"callType":             field(func(i *models.Incident) *string { return &i.CallType }),
	"priority":             field(func(i *models.Incident) *string { return &i.Priority }),
	"alarmLevel":           field(func(i *models.Incident) *int { return &i.AlarmLevel }),
	"nature":               field(func(i *models.Incident) *string { return &i.Nature }),
	"address":              field(func(i *models.Incident) *string { return &i.Address }),
	"locationName":         field(func(i *models.Incident) *string { return &i.LocationName }),
	"crossStreet":          field(func(i *models.Incident) *string { return &i.CrossStreet }),
	"city":                 field(func(i *models.Incident) *string { return &i.City }),
	"jurisdiction":         field(func(i *models.Incident) *string { return &i.Jurisdiction }),
	"latitude":             field(func(i *models.Incident) **float64 { return &i.Latitude }),
	"longitude":            field(func(i *models.Incident) **float64 { return &i.Longitude }),
	"responseDate":         field(func(i *models.Incident) **models.Timestamp { return &i.ResponseDate }),
}

var assignmentFields = fieldTable[models.UnitAssignment]{
	"radioName":     field(func(a *models.UnitAssignment) *string { return &a.RadioName }),
	"statusId":      field(func(a *models.UnitAssignment) **int { return &a.StatusID }),
	"station":       field(func(a *models.UnitAssignment) *string { return &a.Station }),
	"startDateTime": field(func(a *models.UnitAssignment) **models.Timestamp { return &a.StartDateTime }),
	"endDateTime":   field(func(a *models.UnitAssignment) **models.Timestamp { return &a.EndDateTime }),
}

var unitFields = fieldTable[models.Unit]{
	"currentStation": field(func(u *models.Unit) *string { return &u.CurrentStation }),
	"homeStation":    field(func(u *models.Unit) *string { return &u.HomeStation }),
	"statusId":       field(func(u *models.Unit) **int { return &u.StatusID }),
	"unitType":       field(func(u *models.Unit) *string { return &u.UnitType }),
	"incidentId":     field(func(u *models.Unit) **models.IncidentID { return &u.IncidentID }),
}

// IncidentFieldKnown - можно ли патчить поле инцидента
func IncidentFieldKnown(name string) bool {
	_, ok := incidentFields[name]
	return ok
}

// UnitFieldKnown - можно ли патчить поле подразделения
func UnitFieldKnown(name string) bool {
	_, ok := unitFields[name]
	return ok
}
