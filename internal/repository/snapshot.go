package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shenikar/station_dashboard/internal/models"
	"github.com/shenikar/station_dashboard/internal/service"
)

// ErrSnapshotRejected - сервер ответил на запрос снимка не 2xx
var ErrSnapshotRejected = errors.New("snapshot request rejected")

type SnapshotRepository struct {
	client       *http.Client
	incidentsURL string
	unitsURL     string
	apiKey       string
}

// NewSnapshotRepository создает клиент снимков. apiKey может быть пустым.
func NewSnapshotRepository(client *http.Client, incidentsURL, unitsURL, apiKey string) service.SnapshotRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &SnapshotRepository{
		client:       client,
		incidentsURL: incidentsURL,
		unitsURL:     unitsURL,
		apiKey:       apiKey,
	}
}

// FetchIncidents загружает снимок инцидентов в порядке сервера
func (r *SnapshotRepository) FetchIncidents(ctx context.Context) ([]*models.Incident, error) {
	var incidents []*models.Incident
	if err := r.get(ctx, r.incidentsURL, &incidents); err != nil {
		return nil, fmt.Errorf("failed to fetch incidents: %w", err)
	}
	return incidents, nil
}

// FetchUnits загружает реестр подразделений
func (r *SnapshotRepository) FetchUnits(ctx context.Context) ([]*models.Unit, error) {
	var units []*models.Unit
	if err := r.get(ctx, r.unitsURL, &units); err != nil {
		return nil, fmt.Errorf("failed to fetch units: %w", err)
	}
	return units, nil
}

func (r *SnapshotRepository) get(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrSnapshotRejected, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
