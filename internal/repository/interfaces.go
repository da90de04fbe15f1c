// internal/repository/interfaces.go
package repository

import (
	"context"
	"time"

	"smartvns/internal/model"

	"github.com/google/uuid"
)

// DeviceRepository defines device data access operations
type DeviceRepository interface {
	// CRUD operations
	Create(ctx context.Context, device *model.Device) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Device, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*model.Device, error)
	Update(ctx context.Context, device *model.Device) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeviceStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Listing and filtering
	List(ctx context.Context, filter *DeviceFilter) ([]*model.Device, int, error)
	ListByRole(ctx context.Context, role model.DeviceRole) ([]*model.Device, error)
	ListByStatus(ctx context.Context, status model.DeviceStatus) ([]*model.Device, error)

	// Telemetry
	UpdateLastSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error
	UpdateBatteryLevel(ctx context.Context, id uuid.UUID, level int) error

	// Reporting
	GetDeviceStats(ctx context.Context) (*DeviceStats, error)
}

// ConfigRepository defines config snapshot data access operations
type ConfigRepository interface {
	Create(ctx context.Context, snapshot *model.ConfigSnapshot) error
	GetLatest(ctx context.Context, deviceID uuid.UUID, kind model.ConfigKind) (*model.ConfigSnapshot, error)
	ListByDevice(ctx context.Context, deviceID uuid.UUID, kind *model.ConfigKind, limit int) ([]*model.ConfigSnapshot, error)
	DeleteOldSnapshots(ctx context.Context, olderThan time.Time) (int64, error)
}

// EventRepository defines device event data access operations
type EventRepository interface {
	Create(ctx context.Context, event *model.DeviceEvent) error
	ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*model.DeviceEvent, error)
	ListByType(ctx context.Context, eventType model.EventType, limit int) ([]*model.DeviceEvent, error)
	DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

// Filter structures

// DeviceFilter represents device listing filters
type DeviceFilter struct {
	Role           *model.DeviceRole     `json:"role,omitempty"`
	Status         *model.DeviceStatus   `json:"status,omitempty"`
	ConnectionType *model.ConnectionType `json:"connection_type,omitempty"`
	SearchTerm     *string               `json:"search_term,omitempty"`
	Page           int                   `json:"page"`
	PerPage        int                   `json:"per_page"`
	SortBy         string                `json:"sort_by"`
	SortOrder      string                `json:"sort_order"`
}

// Statistics structures

// DeviceStats represents device statistics
type DeviceStats struct {
	TotalDevices   int                        `json:"total_devices"`
	OnlineDevices  int                        `json:"online_devices"`
	OfflineDevices int                        `json:"offline_devices"`
	ErrorDevices   int                        `json:"error_devices"`
	ByRole         map[model.DeviceRole]int   `json:"by_role"`
	ByStatus       map[model.DeviceStatus]int `json:"by_status"`
}
