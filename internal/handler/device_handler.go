// internal/handler/device_handler.go
package handler

import (
	"net/http"
	"strconv"
	"time"

	"smartvns/internal/model"
	"smartvns/internal/repository"
	"smartvns/internal/service"
	"smartvns/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler handles device-related HTTP requests
type DeviceHandler struct {
	deviceService *service.DeviceService
	logger        *utils.ServiceLogger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(deviceService *service.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		logger:        utils.NewServiceLogger(logger, "device-handler"),
	}
}

// RegisterRoutes registers device-related routes
func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.POST("", h.RegisterDevice)
		devices.GET("", h.ListDevices)

		deviceRoutes := devices.Group("/:id")
		{
			deviceRoutes.GET("", h.GetDevice)
			deviceRoutes.DELETE("", h.DeleteDevice)
			deviceRoutes.POST("/connect", h.ConnectDevice)
			deviceRoutes.POST("/disconnect", h.DisconnectDevice)
			deviceRoutes.POST("/reboot", h.RebootDevice)
			deviceRoutes.POST("/factory-reset", h.FactoryResetDevice)
			deviceRoutes.POST("/clock", h.SetClock)
			deviceRoutes.GET("/battery", h.ReadBattery)
			deviceRoutes.GET("/events", h.ListDeviceEvents)
		}
	}

	pairings := router.Group("/pairings")
	{
		pairings.POST("", h.PairDevices)
		pairings.DELETE("", h.UnpairDevices)
	}

	router.GET("/fleet/stats", h.GetFleetStats)
}

// RegisterDevice registers a new device
// @Summary Register a new device
// @Description Register a new SmartVNS device in the system with its connection configuration
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body service.RegisterDeviceRequest true "Device registration request"
// @Success 201 {object} utils.APIResponse{data=model.Device} "Device registered successfully"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 500 {object} utils.APIResponse "Internal server error"
// @Router /devices [post]
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req service.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	device, err := h.deviceService.RegisterDevice(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to register device", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to register device", err)
		return
	}

	h.logger.Info("Device registered successfully", zap.String("device_id", device.DeviceID))
	utils.SuccessResponse(c, http.StatusCreated, "Device registered successfully", device)
}

// ListDevices lists devices with filtering and pagination
// @Summary List devices
// @Description Get list of devices with filtering and pagination support
// @Tags Devices
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param role query string false "Filter by role" Enums(TRACKER, STIMULATOR)
// @Param status query string false "Filter by status" Enums(ONLINE, OFFLINE, ERROR, CONNECTING)
// @Param connection_type query string false "Filter by connection type" Enums(SERIAL, USB, BLE)
// @Param search query string false "Search in device ID and name"
// @Param sort_by query string false "Sort by field" default(created_at)
// @Param sort_order query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} utils.APIResponse{data=object{devices=[]model.Device,pagination=service.PaginationResult}} "Devices retrieved successfully"
// @Failure 500 {object} utils.APIResponse "Internal server error"
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	filter := &repository.DeviceFilter{
		Page:      1,
		PerPage:   20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if perPage := c.Query("per_page"); perPage != "" {
		if pp, err := strconv.Atoi(perPage); err == nil && pp > 0 && pp <= 100 {
			filter.PerPage = pp
		}
	}

	if role := c.Query("role"); role != "" {
		r := model.DeviceRole(role)
		filter.Role = &r
	}
	if status := c.Query("status"); status != "" {
		s := model.DeviceStatus(status)
		filter.Status = &s
	}
	if connectionType := c.Query("connection_type"); connectionType != "" {
		ct := model.ConnectionType(connectionType)
		filter.ConnectionType = &ct
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}

	if sortBy := c.Query("sort_by"); sortBy != "" {
		filter.SortBy = sortBy
	}
	if sortOrder := c.Query("sort_order"); sortOrder != "" {
		filter.SortOrder = sortOrder
	}

	devices, pagination, err := h.deviceService.ListDevices(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list devices", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list devices", err)
		return
	}

	response := gin.H{
		"devices":    devices,
		"pagination": pagination,
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices retrieved successfully", response)
}

// GetDevice retrieves device by ID
// @Summary Get device details
// @Description Get device details and current status by device ID
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse{data=model.Device} "Device retrieved successfully"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	deviceID := c.Param("id")

	device, err := h.deviceService.GetDevice(c.Request.Context(), deviceID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device retrieved successfully", device)
}

// DeleteDevice removes a device
// @Summary Delete device
// @Description Remove a device from the system. Online devices must be disconnected first.
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Device deleted successfully"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Failure 409 {object} utils.APIResponse "Device is online"
// @Router /devices/{id} [delete]
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.deviceService.DeleteDevice(c.Request.Context(), deviceID); err != nil {
		h.logger.Error("Failed to delete device", zap.Error(err), zap.String("device_id", deviceID))
		utils.ErrorResponse(c, http.StatusConflict, "Failed to delete device", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device deleted successfully", gin.H{"device_id": deviceID})
}

// ConnectDevice opens a console session to the device
// @Summary Connect to device
// @Description Open a console session to the device and refresh its identity and battery state
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse{data=model.Device} "Device connected successfully"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/connect [post]
func (h *DeviceHandler) ConnectDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.deviceService.ConnectDevice(c.Request.Context(), deviceID); err != nil {
		h.logger.Error("Failed to connect device", zap.Error(err), zap.String("device_id", deviceID))
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to connect to device", err)
		return
	}

	device, err := h.deviceService.GetDevice(c.Request.Context(), deviceID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device connected successfully", device)
}

// DisconnectDevice closes the console session
// @Summary Disconnect device
// @Description Close the console session to the device
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Device disconnected successfully"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Router /devices/{id}/disconnect [post]
func (h *DeviceHandler) DisconnectDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.deviceService.DisconnectDevice(c.Request.Context(), deviceID); err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Failed to disconnect device", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device disconnected successfully", gin.H{"device_id": deviceID})
}

// RebootDevice resets a device
// @Summary Reboot device
// @Description Issue a reset over the console session. The session is closed afterwards.
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Device rebooted"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/reboot [post]
func (h *DeviceHandler) RebootDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.deviceService.RebootDevice(c.Request.Context(), deviceID); err != nil {
		h.logger.Error("Failed to reboot device", zap.Error(err), zap.String("device_id", deviceID))
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to reboot device", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device rebooted", gin.H{"device_id": deviceID})
}

// FactoryResetDevice erases device storage and reboots it
// @Summary Factory reset device
// @Description Erase device storage and issue a reset. All recorded data on the device is lost.
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Device factory reset"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/factory-reset [post]
func (h *DeviceHandler) FactoryResetDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.deviceService.FactoryResetDevice(c.Request.Context(), deviceID); err != nil {
		h.logger.Error("Failed to factory reset device", zap.Error(err), zap.String("device_id", deviceID))
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to factory reset device", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device factory reset", gin.H{"device_id": deviceID})
}

// SetClock writes the host clock to the device RTC
// @Summary Synchronize device clock
// @Description Write the current host time to the device real-time clock
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Clock synchronized"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/clock [post]
func (h *DeviceHandler) SetClock(c *gin.Context) {
	deviceID := c.Param("id")
	now := time.Now()

	if err := h.deviceService.SetClock(c.Request.Context(), deviceID, now); err != nil {
		h.logger.Error("Failed to set device clock", zap.Error(err), zap.String("device_id", deviceID))
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to set device clock", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Clock synchronized", gin.H{
		"device_id": deviceID,
		"time":      now,
	})
}

// ReadBattery reads the current battery level
// @Summary Read battery level
// @Description Read the current battery level over the console session
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Battery level retrieved"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/battery [get]
func (h *DeviceHandler) ReadBattery(c *gin.Context) {
	deviceID := c.Param("id")

	level, err := h.deviceService.ReadBattery(c.Request.Context(), deviceID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to read battery", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Battery level retrieved", gin.H{
		"device_id":     deviceID,
		"battery_level": level,
	})
}

// ListDeviceEvents lists recent events for a device
// @Summary List device events
// @Description Get recent events recorded for a device
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param limit query int false "Maximum number of events" default(50)
// @Success 200 {object} utils.APIResponse{data=[]model.DeviceEvent} "Events retrieved successfully"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Router /devices/{id}/events [get]
func (h *DeviceHandler) ListDeviceEvents(c *gin.Context) {
	deviceID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	events, err := h.deviceService.GetDeviceEvents(c.Request.Context(), deviceID, limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Failed to list device events", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Events retrieved successfully", events)
}

// PairDevices exchanges pairing keys between two devices
// @Summary Pair devices
// @Description Exchange out-of-band pairing keys between a tracker and a stimulator. Both devices must be connected.
// @Tags Pairings
// @Accept json
// @Produce json
// @Param request body handler.PairingRequest true "Pairing request"
// @Success 200 {object} utils.APIResponse "Devices paired"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /pairings [post]
func (h *DeviceHandler) PairDevices(c *gin.Context) {
	var req PairingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.deviceService.PairDevices(c.Request.Context(), req.FirstID, req.SecondID); err != nil {
		h.logger.Error("Failed to pair devices", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to pair devices", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices paired", gin.H{
		"first_id":  req.FirstID,
		"second_id": req.SecondID,
	})
}

// UnpairDevices clears pairing keys on both devices
// @Summary Unpair devices
// @Description Clear out-of-band pairing keys on both devices. Both devices must be connected.
// @Tags Pairings
// @Accept json
// @Produce json
// @Param request body handler.PairingRequest true "Pairing request"
// @Success 200 {object} utils.APIResponse "Devices unpaired"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /pairings [delete]
func (h *DeviceHandler) UnpairDevices(c *gin.Context) {
	var req PairingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.deviceService.UnpairDevices(c.Request.Context(), req.FirstID, req.SecondID); err != nil {
		h.logger.Error("Failed to unpair devices", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to unpair devices", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices unpaired", gin.H{
		"first_id":  req.FirstID,
		"second_id": req.SecondID,
	})
}

// GetFleetStats retrieves fleet-wide device statistics
// @Summary Get fleet statistics
// @Description Get device counts grouped by role and status
// @Tags Devices
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse{data=repository.DeviceStats} "Statistics retrieved successfully"
// @Failure 500 {object} utils.APIResponse "Internal server error"
// @Router /fleet/stats [get]
func (h *DeviceHandler) GetFleetStats(c *gin.Context) {
	stats, err := h.deviceService.GetDeviceStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get device stats", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get device stats", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

// PairingRequest identifies the two devices of a pairing operation.
type PairingRequest struct {
	FirstID  string `json:"first_id" binding:"required"`
	SecondID string `json:"second_id" binding:"required"`
}
