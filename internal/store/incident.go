package store

import (
	"encoding/json"
	"errors"

	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

// NotFound - позиция отсутствующего инцидента
const NotFound = -1

// ErrMissingRadioName - в назначении подразделения нет radioName
var ErrMissingRadioName = errors.New("unit assignment without radioName")

// IncidentStore - упорядоченная коллекция инцидентов, новые в начале.
// Не потокобезопасен: владелец вызывает методы из одной горутины.
type IncidentStore struct {
	incidents []*models.Incident
	logger    *logrus.Logger
}

// NewIncidentStore создает пустое хранилище инцидентов
func NewIncidentStore(logger *logrus.Logger) *IncidentStore {
	return &IncidentStore{
		incidents: make([]*models.Incident, 0),
		logger:    logger,
	}
}

func (s *IncidentStore) log(method string, id models.IncidentID) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"service":     "incident_store",
		"method":      method,
		"incident_id": id,
	})
}

// IndexOf возвращает позицию инцидента или NotFound
func (s *IncidentStore) IndexOf(id models.IncidentID) int {
	for i, inc := range s.incidents {
		if inc.ID == id {
			return i
		}
	}
	return NotFound
}

// Get возвращает инцидент по id
func (s *IncidentStore) Get(id models.IncidentID) (*models.Incident, bool) {
	idx := s.IndexOf(id)
	if idx == NotFound {
		return nil, false
	}
	return s.incidents[idx], true
}

// All возвращает инциденты в порядке отображения
func (s *IncidentStore) All() []*models.Incident {
	out := make([]*models.Incident, len(s.incidents))
	copy(out, s.incidents)
	return out
}

// Len - количество инцидентов
func (s *IncidentStore) Len() int {
	return len(s.incidents)
}

// ReplaceAll загружает снимок. Дубликаты id в снимке схлопываются.
func (s *IncidentStore) ReplaceAll(incidents []*models.Incident) {
	s.incidents = make([]*models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc == nil {
			continue
		}
		if idx := s.IndexOf(inc.ID); idx != NotFound {
			s.log("ReplaceAll", inc.ID).Warn("Duplicate incident in snapshot, keeping the last one")
			s.incidents[idx] = inc
			continue
		}
		s.incidents = append(s.incidents, inc)
	}
}

// AddOrReplace вставляет новый инцидент в начало или целиком заменяет известный.
// Сервер при сверке присылает полное состояние, поэтому замена, а не слияние.
func (s *IncidentStore) AddOrReplace(inc *models.Incident) int {
	if idx := s.IndexOf(inc.ID); idx != NotFound {
		s.log("AddOrReplace", inc.ID).Warn("Incident already known, replacing")
		s.incidents[idx] = inc
		return idx
	}

	s.incidents = append(s.incidents, nil)
	copy(s.incidents[1:], s.incidents)
	s.incidents[0] = inc
	s.log("AddOrReplace", inc.ID).Debug("Incident added")
	return 0
}

// Remove удаляет инцидент
func (s *IncidentStore) Remove(id models.IncidentID) bool {
	idx := s.IndexOf(id)
	if idx == NotFound {
		s.log("Remove", id).Warn("Attempted to remove a non-existent incident")
		return false
	}
	s.incidents = append(s.incidents[:idx], s.incidents[idx+1:]...)
	s.log("Remove", id).Debug("Incident removed")
	return true
}

// RemoveMany удаляет инциденты по очереди
func (s *IncidentStore) RemoveMany(ids []models.IncidentID) int {
	removed := 0
	for _, id := range ids {
		if s.Remove(id) {
			removed++
		}
	}
	return removed
}

// PatchField меняет одно поле инцидента. Неизвестный инцидент не создаётся.
func (s *IncidentStore) PatchField(id models.IncidentID, field string, value json.RawMessage) error {
	log := s.log("PatchField", id).WithField("field", field)

	inc, ok := s.Get(id)
	if !ok {
		log.Warn("Attempted to patch a non-existent incident")
		return nil
	}

	if err := incidentFields.apply(inc, field, value); err != nil {
		log.WithError(err).Warn("Failed to patch incident field")
		return err
	}
	log.Debug("Incident field patched")
	return nil
}

// UpsertUnit добавляет назначение подразделения или сливает поля с существующим.
// Возвращает true, если подразделение добавлено впервые.
func (s *IncidentStore) UpsertUnit(id models.IncidentID, radioName string, fields map[string]json.RawMessage) (bool, error) {
	log := s.log("UpsertUnit", id).WithField("radio_name", radioName)

	if radioName == "" {
		log.Warn("Unit update without radioName")
		return false, ErrMissingRadioName
	}

	inc, ok := s.Get(id)
	if !ok {
		log.Warn("Attempted to update unit of a non-existent incident")
		return false, nil
	}

	for i := range inc.UnitsAssigned {
		if inc.UnitsAssigned[i].RadioName == radioName {
			s.mergeAssignment(log, &inc.UnitsAssigned[i], fields)
			log.Debug("Unit assignment merged")
			return false, nil
		}
	}

	assignment := models.UnitAssignment{RadioName: radioName}
	s.mergeAssignment(log, &assignment, fields)
	inc.UnitsAssigned = append(inc.UnitsAssigned, assignment)
	log.Debug("Unit assignment appended")
	return true, nil
}

// mergeAssignment применяет только присланные поля, остальные сохраняются
func (s *IncidentStore) mergeAssignment(log *logrus.Entry, a *models.UnitAssignment, fields map[string]json.RawMessage) {
	for name, raw := range fields {
		if name == "radioName" {
			continue
		}
		if err := assignmentFields.apply(a, name, raw); err != nil {
			log.WithError(err).Warn("Skipping unit assignment field")
		}
	}
}

// UpsertComment добавляет комментарий или заменяет комментарий с тем же id
func (s *IncidentStore) UpsertComment(id models.IncidentID, comment models.Comment) {
	log := s.log("UpsertComment", id).WithField("comment_id", comment.ID)

	inc, ok := s.Get(id)
	if !ok {
		log.Warn("Attempted to add comment to a non-existent incident")
		return
	}

	if inc.Comments == nil {
		inc.Comments = make([]models.Comment, 0, 1)
	}
	for i := range inc.Comments {
		if inc.Comments[i].ID == comment.ID {
			log.Warn("Comment already present, replacing")
			inc.Comments[i] = comment
			return
		}
	}
	inc.Comments = append(inc.Comments, comment)
}

// FilterDisplayable возвращает только инциденты с номером и назначенными подразделениями
func (s *IncidentStore) FilterDisplayable() []*models.Incident {
	out := make([]*models.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		if inc.Displayable() {
			out = append(out, inc)
		}
	}
	return out
}
