package store

import (
	"encoding/json"
	"sort"

	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

// UnitStore - реестр подразделений по radioName.
// Как и IncidentStore, используется из одной горутины.
type UnitStore struct {
	units  map[string]*models.Unit
	logger *logrus.Logger
}

// NewUnitStore создает пустой реестр
func NewUnitStore(logger *logrus.Logger) *UnitStore {
	return &UnitStore{
		units:  make(map[string]*models.Unit),
		logger: logger,
	}
}

// ReplaceAll заменяет весь реестр снимком
func (s *UnitStore) ReplaceAll(units []*models.Unit) {
	s.units = make(map[string]*models.Unit, len(units))
	for _, u := range units {
		if u == nil || u.RadioName == "" {
			continue
		}
		s.units[u.RadioName] = u
	}
	s.logger.WithFields(logrus.Fields{
		"service": "unit_store",
		"method":  "ReplaceAll",
		"count":   len(s.units),
	}).Debug("Unit roster loaded")
}

// Upsert меняет одно поле подразделения. Для неизвестного radioName создаётся
// запись только с этим полем. Возвращает true, если изменилась станция.
func (s *UnitStore) Upsert(radioName, field string, value json.RawMessage) (bool, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "unit_store",
		"method":     "Upsert",
		"radio_name": radioName,
		"field":      field,
	})

	u, ok := s.units[radioName]
	if !ok {
		u = &models.Unit{RadioName: radioName}
	}
	before := u.CurrentStation

	if err := unitFields.apply(u, field, value); err != nil {
		log.WithError(err).Warn("Failed to patch unit field")
		return false, err
	}

	if !ok {
		log.Debug("Unknown unit, created sparse record")
		s.units[radioName] = u
	}
	return field == "currentStation" && (u.CurrentStation != before || !ok), nil
}

// Get возвращает подразделение
func (s *UnitStore) Get(radioName string) (*models.Unit, bool) {
	u, ok := s.units[radioName]
	return u, ok
}

// All возвращает подразделения, отсортированные по radioName
func (s *UnitStore) All() []*models.Unit {
	out := make([]*models.Unit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RadioName < out[j].RadioName })
	return out
}

// UnitsForStation возвращает radioName всех подразделений, находящихся на станции.
// Каждый раз пересчитывается по всему реестру.
func (s *UnitStore) UnitsForStation(station string) []string {
	out := make([]string, 0)
	for name, u := range s.units {
		if u.CurrentStation == station {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
