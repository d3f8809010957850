package models

// Unit - подразделение из общего реестра, независимо от инцидентов
type Unit struct {
	RadioName      string      `json:"radioName"`
	CurrentStation string      `json:"currentStation,omitempty"`
	HomeStation    string      `json:"homeStation,omitempty"`
	StatusID       *int        `json:"statusId,omitempty"`
	UnitType       string      `json:"unitType,omitempty"`
	IncidentID     *IncidentID `json:"incidentId,omitempty"`
}

// Clone возвращает глубокую копию подразделения
func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	c := *u
	c.StatusID = cloneInt(u.StatusID)
	if u.IncidentID != nil {
		id := *u.IncidentID
		c.IncidentID = &id
	}
	return &c
}

// unitStatusCodes - коды статусов CAD, индекс соответствует statusId
var unitStatusCodes = []string{
	"OFF",   // Off Duty
	"AV",    // Available
	"IQ",    // In Quarters
	"RES",   // Reserved
	"--",    // --
	"BUSY",  // Busy
	"D",     // Dispatched
	"ER",    // En Route
	"ED",    // ER to Detail
	"ST",    // Staged
	"OS",    // On Scene
	"AI",    // At Incident
	"TO",    // To Destination
	"AT",    // At Destination
	"01",    // --
	"AE",    // Unused status
	"SS",    // Start Shift
	"OD",    // OS Detail
	"MA",    // Multi-Assign
	"D2",    // D 2nd Loc
	"E2",    // ER 2nd Loc
	"O2",    // OS 2nd Loc
	"clear", // Clear from an assigned incident
}

const statusAvailable = 1
const statusClear = 22

// StatusCode возвращает код статуса подразделения или пустую строку
func StatusCode(id int) string {
	if id < 0 || id >= len(unitStatusCodes) {
		return ""
	}
	return unitStatusCodes[id]
}

// IncidentStatusCode - код статуса для назначения на инцидент.
// "Available" на инциденте означает, что подразделение освободилось.
func IncidentStatusCode(id int) string {
	if id == statusAvailable {
		id = statusClear
	}
	return StatusCode(id)
}
