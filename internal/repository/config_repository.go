// internal/repository/config_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartvns/internal/database"
	"smartvns/internal/model"
)

func parseDecimal(s string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const snapshotColumns = `id, device_id, kind, config, raw_config,
	   pulse_charge_uc, source, created_at`

// configRepository implements ConfigRepository interface
type configRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewConfigRepository creates a new config snapshot repository
func NewConfigRepository(db *database.DB, logger *zap.Logger) ConfigRepository {
	return &configRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a config snapshot
func (r *configRepository) Create(ctx context.Context, snapshot *model.ConfigSnapshot) error {
	query := `
		INSERT INTO config_snapshots (
			id, device_id, kind, config, raw_config, pulse_charge_uc, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var pulseCharge interface{}
	if snapshot.PulseChargeUC != nil {
		pulseCharge = snapshot.PulseChargeUC.String()
	}

	_, err := r.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.DeviceID, snapshot.Kind, snapshot.Config,
		snapshot.RawConfig, pulseCharge, snapshot.Source,
	)

	if err != nil {
		r.logger.Error("Failed to create config snapshot", zap.Error(err),
			zap.String("device_id", snapshot.DeviceID.String()),
			zap.String("kind", string(snapshot.Kind)),
		)
		return fmt.Errorf("failed to create config snapshot: %w", err)
	}

	return nil
}

func (r *configRepository) scanSnapshot(row interface{ Scan(...interface{}) error }) (*model.ConfigSnapshot, error) {
	snapshot := &model.ConfigSnapshot{}
	var pulseCharge sql.NullString

	err := row.Scan(
		&snapshot.ID, &snapshot.DeviceID, &snapshot.Kind, &snapshot.Config,
		&snapshot.RawConfig, &pulseCharge, &snapshot.Source, &snapshot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pulseCharge.Valid {
		charge, err := parseDecimal(pulseCharge.String)
		if err != nil {
			return nil, fmt.Errorf("parse pulse charge: %w", err)
		}
		snapshot.PulseChargeUC = charge
	}

	return snapshot, nil
}

// GetLatest returns the most recent snapshot for a device and kind
func (r *configRepository) GetLatest(ctx context.Context, deviceID uuid.UUID, kind model.ConfigKind) (*model.ConfigSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM config_snapshots
		WHERE device_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, snapshotColumns)

	snapshot, err := r.scanSnapshot(r.db.QueryRowContext(ctx, query, deviceID, kind))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no %s config snapshot for device: %s", kind, deviceID)
		}
		r.logger.Error("Failed to get latest config snapshot", zap.Error(err))
		return nil, fmt.Errorf("failed to get latest config snapshot: %w", err)
	}

	return snapshot, nil
}

// ListByDevice returns snapshots for a device, newest first
func (r *configRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID, kind *model.ConfigKind, limit int) ([]*model.ConfigSnapshot, error) {
	args := []interface{}{deviceID}
	kindClause := ""
	if kind != nil {
		kindClause = "AND kind = $2"
		args = append(args, *kind)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM config_snapshots
		WHERE device_id = $1 %s
		ORDER BY created_at DESC
		LIMIT $%d
	`, snapshotColumns, kindClause, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list config snapshots", zap.Error(err))
		return nil, fmt.Errorf("failed to list config snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*model.ConfigSnapshot{}
	for rows.Next() {
		snapshot, err := r.scanSnapshot(rows)
		if err != nil {
			r.logger.Error("Failed to scan config snapshot row", zap.Error(err))
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// DeleteOldSnapshots removes snapshots older than the given time
func (r *configRepository) DeleteOldSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM config_snapshots WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old config snapshots: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		r.logger.Info("Deleted old config snapshots", zap.Int64("count", deleted))
	}
	return deleted, nil
}
