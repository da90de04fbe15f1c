// internal/repository/event_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartvns/internal/database"
	"smartvns/internal/model"
)

const eventColumns = `id, event_type, device_id, data, timestamp, source, severity`

// eventRepository implements EventRepository interface
type eventRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEventRepository creates a new device event repository
func NewEventRepository(db *database.DB, logger *zap.Logger) EventRepository {
	return &eventRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a device event
func (r *eventRepository) Create(ctx context.Context, event *model.DeviceEvent) error {
	query := `
		INSERT INTO device_events (
			id, event_type, device_id, data, timestamp, source, severity
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.EventType, event.DeviceID, event.Data,
		event.Timestamp, event.Source, event.Severity,
	)

	if err != nil {
		r.logger.Error("Failed to create device event", zap.Error(err),
			zap.String("event_type", string(event.EventType)),
		)
		return fmt.Errorf("failed to create device event: %w", err)
	}

	return nil
}

// ListByDevice returns events for a device, newest first
func (r *eventRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*model.DeviceEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM device_events
		WHERE device_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, eventColumns)

	return r.queryEvents(ctx, query, deviceID, limit)
}

// ListByType returns events of a given type, newest first
func (r *eventRepository) ListByType(ctx context.Context, eventType model.EventType, limit int) ([]*model.DeviceEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM device_events
		WHERE event_type = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, eventColumns)

	return r.queryEvents(ctx, query, eventType, limit)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*model.DeviceEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query device events", zap.Error(err))
		return nil, fmt.Errorf("failed to query device events: %w", err)
	}
	defer rows.Close()

	events := []*model.DeviceEvent{}
	for rows.Next() {
		event := &model.DeviceEvent{}
		err := rows.Scan(
			&event.ID, &event.EventType, &event.DeviceID, &event.Data,
			&event.Timestamp, &event.Source, &event.Severity,
		)
		if err != nil {
			r.logger.Error("Failed to scan device event row", zap.Error(err))
			continue
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// DeleteOldEvents removes events older than the given time
func (r *eventRepository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM device_events WHERE timestamp < $1`

	result, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old device events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		r.logger.Info("Deleted old device events", zap.Int64("count", deleted))
	}
	return deleted, nil
}
