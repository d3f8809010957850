package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/internal/service"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// querier - общая часть pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type AlertLogRepository struct {
	db querier
}

func NewAlertLogRepository(db querier) service.AlertLogRepository {
	return &AlertLogRepository{db: db}
}

// Save записывает переход оповещения в журнал. Повторная запись того же события игнорируется.
func (r *AlertLogRepository) Save(ctx context.Context, event models.AlertEvent) error {
	query := `
		INSERT INTO alert_log (id, episode_id, event, incident_id, incident_number, station, units, reason, elapsed_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING;
	`
	units := event.Units
	if units == nil {
		units = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.EpisodeID,
		string(event.Type),
		int64(event.IncidentID),
		event.IncidentNumber,
		event.Station,
		units,
		event.Reason,
		event.ElapsedSeconds,
		event.At,
	)
	if err != nil {
		return fmt.Errorf("failed to save alert event: %w", err)
	}
	return nil
}

// List возвращает последние записи журнала, новые первыми
func (r *AlertLogRepository) List(ctx context.Context, limit int) ([]models.AlertEvent, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	query := `
		SELECT id, episode_id, event, incident_id, incident_number, station, units, reason, elapsed_seconds, created_at
		FROM alert_log
		ORDER BY created_at DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert events: %w", err)
	}
	defer rows.Close()

	events := make([]models.AlertEvent, 0)
	for rows.Next() {
		var (
			e          models.AlertEvent
			eventType  string
			incidentID int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.EpisodeID,
			&eventType,
			&incidentID,
			&e.IncidentNumber,
			&e.Station,
			&e.Units,
			&e.Reason,
			&e.ElapsedSeconds,
			&e.At,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert event row: %w", err)
		}
		e.Type = models.AlertEventType(eventType)
		e.IncidentID = models.IncidentID(incidentID)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return events, nil
}
