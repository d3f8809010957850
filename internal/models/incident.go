package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// IncidentID - канонический идентификатор инцидента.
// Сервер присылает его то числом, то строкой, поэтому разбираем один раз при приёме.
type IncidentID int64

// String возвращает ключ, под которым инцидент хранится в счётчиках оповещений
func (id IncidentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON принимает как число, так и строку с числом
func (id *IncidentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseIncidentID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("incident id: %w", err)
	}
	parsed, err := ParseIncidentID(n.String())
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseIncidentID разбирает идентификатор инцидента из строки
func ParseIncidentID(s string) (IncidentID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Некоторые источники отдают id в виде 1234.0
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("invalid incident id %q", s)
		}
		v = int64(f)
	}
	return IncidentID(v), nil
}

// Incident - инцидент, отображаемый на панели станции
type Incident struct {
	ID                   IncidentID       `json:"id"`
	MasterIncidentNumber *string          `json:"masterIncidentNumber"`
	IsActive             bool             `json:"isActive"`
	IncidentType         string           `json:"incidentType,omitempty"`
	Problem              string           `json:"problem,omitempty"`
	Nature               string           `json:"nature,omitempty"`
	CallType             string           `json:"callType,omitempty"`
	Priority             string           `json:"priority,omitempty"`
	AlarmLevel           int              `json:"alarmLevel,omitempty"`
	Address              string           `json:"address,omitempty"`
	LocationName         string           `json:"locationName,omitempty"`
	CrossStreet          string           `json:"crossStreet,omitempty"`
	City                 string           `json:"city,omitempty"`
	Jurisdiction         string           `json:"jurisdiction,omitempty"`
	Latitude             *float64         `json:"latitude,omitempty"`
	Longitude            *float64         `json:"longitude,omitempty"`
	ResponseDate         *Timestamp       `json:"responseDate,omitempty"`
	UnitsAssigned        []UnitAssignment `json:"unitsAssigned"`
	Comments             []Comment        `json:"comments,omitempty"`
}

// UnitAssignment - назначение подразделения на инцидент
type UnitAssignment struct {
	RadioName     string     `json:"radioName"`
	StatusID      *int       `json:"statusId,omitempty"`
	Station       string     `json:"station,omitempty"`
	StartDateTime *Timestamp `json:"startDateTime,omitempty"`
	EndDateTime   *Timestamp `json:"endDateTime,omitempty"`
}

// OnCall - подразделение всё ещё на вызове
func (a UnitAssignment) OnCall() bool {
	return a.EndDateTime == nil
}

// Comment - комментарий диспетчера к инциденту
type Comment struct {
	ID        int64      `json:"commentId"`
	Text      string     `json:"text"`
	Author    string     `json:"author,omitempty"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
}

// Displayable - у инцидента есть номер и хотя бы одно назначенное подразделение
func (i *Incident) Displayable() bool {
	return i.MasterIncidentNumber != nil && *i.MasterIncidentNumber != "" && len(i.UnitsAssigned) > 0
}

// Number возвращает номер инцидента или пустую строку
func (i *Incident) Number() string {
	if i.MasterIncidentNumber == nil {
		return ""
	}
	return *i.MasterIncidentNumber
}

// Clone возвращает глубокую копию инцидента
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	if i.MasterIncidentNumber != nil {
		n := *i.MasterIncidentNumber
		c.MasterIncidentNumber = &n
	}
	c.Latitude = cloneFloat(i.Latitude)
	c.Longitude = cloneFloat(i.Longitude)
	c.ResponseDate = cloneTime(i.ResponseDate)
	if i.UnitsAssigned != nil {
		c.UnitsAssigned = make([]UnitAssignment, len(i.UnitsAssigned))
		for k, a := range i.UnitsAssigned {
			c.UnitsAssigned[k] = a.Clone()
		}
	}
	if i.Comments != nil {
		c.Comments = make([]Comment, len(i.Comments))
		for k, cm := range i.Comments {
			cm.CreatedAt = cloneTime(cm.CreatedAt)
			c.Comments[k] = cm
		}
	}
	return &c
}

// Clone возвращает глубокую копию назначения
func (a UnitAssignment) Clone() UnitAssignment {
	a.StatusID = cloneInt(a.StatusID)
	a.StartDateTime = cloneTime(a.StartDateTime)
	a.EndDateTime = cloneTime(a.EndDateTime)
	return a
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *Timestamp) *Timestamp {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
