// internal/repository/device_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartvns/internal/database"
	"smartvns/internal/model"
)

const deviceColumns = `id, device_id, name, role, firmware_version,
	   connection_type, connection_config, status, battery_level,
	   last_seen, error_info, created_at, updated_at`

// deviceRepository implements DeviceRepository interface
type deviceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *database.DB, logger *zap.Logger) DeviceRepository {
	return &deviceRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new device
func (r *deviceRepository) Create(ctx context.Context, device *model.Device) error {
	query := `
		INSERT INTO devices (
			id, device_id, name, role, firmware_version,
			connection_type, connection_config, status, battery_level,
			last_seen, error_info
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		device.ID, device.DeviceID, device.Name, device.Role,
		device.FirmwareVersion, device.ConnectionType, device.ConnectionConfig,
		device.Status, device.BatteryLevel, device.LastSeen, device.ErrorInfo,
	)

	if err != nil {
		r.logger.Error("Failed to create device", zap.Error(err), zap.String("device_id", device.DeviceID))
		return fmt.Errorf("failed to create device: %w", err)
	}

	r.logger.Info("Device created successfully", zap.String("device_id", device.DeviceID))
	return nil
}

func (r *deviceRepository) scanDevice(row interface{ Scan(...interface{}) error }) (*model.Device, error) {
	device := &model.Device{}
	err := row.Scan(
		&device.ID, &device.DeviceID, &device.Name, &device.Role,
		&device.FirmwareVersion, &device.ConnectionType, &device.ConnectionConfig,
		&device.Status, &device.BatteryLevel, &device.LastSeen,
		&device.ErrorInfo, &device.CreatedAt, &device.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return device, nil
}

// GetByID retrieves a device by its UUID
func (r *deviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE id = $1`, deviceColumns)

	device, err := r.scanDevice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("device not found with id: %s", id)
		}
		r.logger.Error("Failed to get device by ID", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return device, nil
}

// GetByDeviceID retrieves a device by its device ID
func (r *deviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*model.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE device_id = $1`, deviceColumns)

	device, err := r.scanDevice(r.db.QueryRowContext(ctx, query, deviceID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("device not found with device_id: %s", deviceID)
		}
		r.logger.Error("Failed to get device by device_id", zap.Error(err), zap.String("device_id", deviceID))
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return device, nil
}

// Update updates an existing device
func (r *deviceRepository) Update(ctx context.Context, device *model.Device) error {
	query := `
		UPDATE devices SET
			name = $2, role = $3, firmware_version = $4,
			connection_type = $5, connection_config = $6, status = $7,
			battery_level = $8, last_seen = $9, error_info = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		device.ID, device.Name, device.Role, device.FirmwareVersion,
		device.ConnectionType, device.ConnectionConfig, device.Status,
		device.BatteryLevel, device.LastSeen, device.ErrorInfo,
	)

	if err != nil {
		r.logger.Error("Failed to update device", zap.Error(err), zap.String("device_id", device.DeviceID))
		return fmt.Errorf("failed to update device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("device not found with id: %s", device.ID)
	}

	r.logger.Debug("Device updated successfully", zap.String("device_id", device.DeviceID))
	return nil
}

// UpdateStatus updates device status
func (r *deviceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeviceStatus) error {
	query := `
		UPDATE devices SET status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		r.logger.Error("Failed to update device status", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to update device status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("device not found with id: %s", id)
	}

	return nil
}

// Delete removes a device
func (r *deviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM devices WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete device", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to delete device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("device not found with id: %s", id)
	}

	r.logger.Info("Device deleted successfully", zap.String("id", id.String()))
	return nil
}

// List retrieves devices with filtering and pagination
func (r *deviceRepository) List(ctx context.Context, filter *DeviceFilter) ([]*model.Device, int, error) {
	whereConditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Role != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, *filter.Role)
		argIndex++
	}

	if filter.Status != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.ConnectionType != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("connection_type = $%d", argIndex))
		args = append(args, *filter.ConnectionType)
		argIndex++
	}

	if filter.SearchTerm != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("(device_id ILIKE $%d OR name ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.SearchTerm+"%")
		argIndex++
	}

	whereClause := ""
	if len(whereConditions) > 0 {
		whereClause = "WHERE " + strings.Join(whereConditions, " AND ")
	}

	// Count total records
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM devices %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	orderBy := "created_at DESC"
	if filter.SortBy != "" {
		order := "ASC"
		if filter.SortOrder == "desc" {
			order = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", filter.SortBy, order)
	}

	offset := (filter.Page - 1) * filter.PerPage
	query := fmt.Sprintf(`
		SELECT %s
		FROM devices %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, deviceColumns, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filter.PerPage, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list devices", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := []*model.Device{}
	for rows.Next() {
		device, err := r.scanDevice(rows)
		if err != nil {
			r.logger.Error("Failed to scan device row", zap.Error(err))
			continue
		}
		devices = append(devices, device)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate device rows: %w", err)
	}

	return devices, total, nil
}

// ListByRole retrieves devices by role
func (r *deviceRepository) ListByRole(ctx context.Context, role model.DeviceRole) ([]*model.Device, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM devices
		WHERE role = $1
		ORDER BY device_id
	`, deviceColumns)

	return r.queryDevices(ctx, query, role)
}

// ListByStatus retrieves devices by status
func (r *deviceRepository) ListByStatus(ctx context.Context, status model.DeviceStatus) ([]*model.Device, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM devices
		WHERE status = $1
		ORDER BY last_seen DESC
	`, deviceColumns)

	return r.queryDevices(ctx, query, status)
}

func (r *deviceRepository) queryDevices(ctx context.Context, query string, args ...interface{}) ([]*model.Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query devices", zap.Error(err))
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := []*model.Device{}
	for rows.Next() {
		device, err := r.scanDevice(rows)
		if err != nil {
			r.logger.Error("Failed to scan device row", zap.Error(err))
			continue
		}
		devices = append(devices, device)
	}

	return devices, rows.Err()
}

// UpdateLastSeen updates device last seen time
func (r *deviceRepository) UpdateLastSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error {
	query := `
		UPDATE devices SET last_seen = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, seenAt)
	if err != nil {
		r.logger.Error("Failed to update last seen", zap.Error(err))
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	return nil
}

// UpdateBatteryLevel updates the stored battery level
func (r *deviceRepository) UpdateBatteryLevel(ctx context.Context, id uuid.UUID, level int) error {
	query := `
		UPDATE devices SET battery_level = $2, last_seen = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, level)
	if err != nil {
		r.logger.Error("Failed to update battery level", zap.Error(err))
		return fmt.Errorf("failed to update battery level: %w", err)
	}

	return nil
}

// GetDeviceStats retrieves device statistics
func (r *deviceRepository) GetDeviceStats(ctx context.Context) (*DeviceStats, error) {
	stats := &DeviceStats{
		ByRole:   make(map[model.DeviceRole]int),
		ByStatus: make(map[model.DeviceStatus]int),
	}

	query := `
		SELECT role, status, COUNT(*)
		FROM devices
		GROUP BY role, status
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get device stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role model.DeviceRole
		var status model.DeviceStatus
		var count int

		if err := rows.Scan(&role, &status, &count); err != nil {
			continue
		}

		stats.TotalDevices += count
		stats.ByRole[role] += count
		stats.ByStatus[status] += count

		switch status {
		case model.DeviceStatusOnline:
			stats.OnlineDevices += count
		case model.DeviceStatusOffline:
			stats.OfflineDevices += count
		case model.DeviceStatusError:
			stats.ErrorDevices += count
		}
	}

	return stats, rows.Err()
}
