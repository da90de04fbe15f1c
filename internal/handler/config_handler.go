// internal/handler/config_handler.go
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"smartvns/internal/model"
	"smartvns/internal/service"
	"smartvns/internal/utils"
	"smartvns/pkg/configcodec"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfigHandler handles device configuration HTTP requests
type ConfigHandler struct {
	configService *service.ConfigService
	logger        *utils.ServiceLogger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(configService *service.ConfigService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
		logger:        utils.NewServiceLogger(logger, "config-handler"),
	}
}

// RegisterRoutes registers configuration routes
func (h *ConfigHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices/:id")
	{
		devices.GET("/config/sys", h.ReadSysConfig)
		devices.PUT("/config/sys", h.WriteSysConfig)
		devices.GET("/config/stim", h.ReadStimConfig)
		devices.PUT("/config/stim", h.WriteStimConfig)
		devices.GET("/config/history", h.GetConfigHistory)

		devices.POST("/stimulation/trigger", h.TriggerStimulation)
		devices.POST("/stimulation/intensity", h.SetIntensity)
	}
}

// ReadSysConfig reads the device system configuration
// @Summary Read system configuration
// @Description Read the system configuration blob from the device and decode it to a field mapping
// @Tags Configuration
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Configuration retrieved"
// @Failure 422 {object} utils.APIResponse "Device returned an undecodable blob"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/config/sys [get]
func (h *ConfigHandler) ReadSysConfig(c *gin.Context) {
	deviceID := c.Param("id")

	mapping, err := h.configService.ReadSysConfig(c.Request.Context(), deviceID)
	if err != nil {
		h.respondConfigError(c, deviceID, "Failed to read system configuration", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Configuration retrieved", gin.H{
		"device_id": deviceID,
		"kind":      model.ConfigKindSys,
		"config":    mapping,
	})
}

// WriteSysConfig writes the device system configuration
// @Summary Write system configuration
// @Description Encode a field mapping into a system configuration blob and write it to the device
// @Tags Configuration
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body object true "Configuration field mapping"
// @Success 200 {object} utils.APIResponse "Configuration written"
// @Failure 400 {object} utils.APIResponse "Invalid field mapping"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/config/sys [put]
func (h *ConfigHandler) WriteSysConfig(c *gin.Context) {
	deviceID := c.Param("id")

	var mapping map[string]interface{}
	if err := c.ShouldBindJSON(&mapping); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.configService.WriteSysConfig(c.Request.Context(), deviceID, mapping); err != nil {
		h.respondConfigError(c, deviceID, "Failed to write system configuration", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Configuration written", gin.H{
		"device_id": deviceID,
		"kind":      model.ConfigKindSys,
	})
}

// ReadStimConfig reads the device stimulation configuration
// @Summary Read stimulation configuration
// @Description Read the stimulation configuration blob from the device and decode it to a field mapping
// @Tags Configuration
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Configuration retrieved"
// @Failure 422 {object} utils.APIResponse "Device returned an undecodable blob"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/config/stim [get]
func (h *ConfigHandler) ReadStimConfig(c *gin.Context) {
	deviceID := c.Param("id")

	mapping, err := h.configService.ReadStimConfig(c.Request.Context(), deviceID)
	if err != nil {
		h.respondConfigError(c, deviceID, "Failed to read stimulation configuration", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Configuration retrieved", gin.H{
		"device_id": deviceID,
		"kind":      model.ConfigKindStim,
		"config":    mapping,
	})
}

// WriteStimConfig writes the device stimulation configuration
// @Summary Write stimulation configuration
// @Description Encode a field mapping into a stimulation configuration blob and write it to the device. Only stimulators accept this operation.
// @Tags Configuration
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body object true "Configuration field mapping"
// @Success 200 {object} utils.APIResponse "Configuration written"
// @Failure 400 {object} utils.APIResponse "Invalid field mapping"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/config/stim [put]
func (h *ConfigHandler) WriteStimConfig(c *gin.Context) {
	deviceID := c.Param("id")

	var mapping map[string]interface{}
	if err := c.ShouldBindJSON(&mapping); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.configService.WriteStimConfig(c.Request.Context(), deviceID, mapping); err != nil {
		h.respondConfigError(c, deviceID, "Failed to write stimulation configuration", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Configuration written", gin.H{
		"device_id": deviceID,
		"kind":      model.ConfigKindStim,
	})
}

// TriggerStimulation triggers a stimulation burst
// @Summary Trigger stimulation
// @Description Rewrite the stimulation configuration with the requested burst duration to trigger stimulation
// @Tags Stimulation
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body handler.TriggerStimulationRequest true "Trigger request"
// @Success 200 {object} utils.APIResponse "Stimulation triggered"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/stimulation/trigger [post]
func (h *ConfigHandler) TriggerStimulation(c *gin.Context) {
	deviceID := c.Param("id")

	var req TriggerStimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.configService.TriggerStimulation(c.Request.Context(), deviceID, req.DurationMs); err != nil {
		h.respondConfigError(c, deviceID, "Failed to trigger stimulation", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Stimulation triggered", gin.H{
		"device_id":   deviceID,
		"duration_ms": req.DurationMs,
	})
}

// SetIntensity updates the stimulation intensity
// @Summary Set stimulation intensity
// @Description Update the stimulation current amplitude in microamperes
// @Tags Stimulation
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body handler.SetIntensityRequest true "Intensity request"
// @Success 200 {object} utils.APIResponse "Intensity updated"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Device unreachable"
// @Router /devices/{id}/stimulation/intensity [post]
func (h *ConfigHandler) SetIntensity(c *gin.Context) {
	deviceID := c.Param("id")

	var req SetIntensityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.configService.SetIntensity(c.Request.Context(), deviceID, req.IntensityUA); err != nil {
		h.respondConfigError(c, deviceID, "Failed to set intensity", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Intensity updated", gin.H{
		"device_id":    deviceID,
		"intensity_uA": req.IntensityUA,
	})
}

// GetConfigHistory lists stored configuration snapshots
// @Summary Get configuration history
// @Description List configuration snapshots recorded for a device, newest first
// @Tags Configuration
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param kind query string false "Filter by configuration kind" Enums(SYS, STIM)
// @Param limit query int false "Maximum number of snapshots" default(50)
// @Success 200 {object} utils.APIResponse{data=[]model.ConfigSnapshot} "History retrieved"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Router /devices/{id}/config/history [get]
func (h *ConfigHandler) GetConfigHistory(c *gin.Context) {
	deviceID := c.Param("id")

	var kind *model.ConfigKind
	if raw := c.Query("kind"); raw != "" {
		k := model.ConfigKind(raw)
		if k != model.ConfigKindSys && k != model.ConfigKindStim {
			utils.ErrorResponse(c, http.StatusBadRequest, "kind must be SYS or STIM", nil)
			return
		}
		kind = &k
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	snapshots, err := h.configService.GetConfigHistory(c.Request.Context(), deviceID, kind, limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Failed to get configuration history", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "History retrieved", snapshots)
}

// respondConfigError maps codec failures to the right status code.
// Validation problems are the caller's fault, decode problems mean the
// device sent a blob we cannot interpret.
func (h *ConfigHandler) respondConfigError(c *gin.Context, deviceID, message string, err error) {
	h.logger.Error(message, zap.Error(err), zap.String("device_id", deviceID))

	var validationErr *configcodec.ValidationError
	if errors.As(err, &validationErr) {
		utils.ValidationErrorResponse(c, map[string]string{
			validationErr.Field: validationErr.Reason,
		})
		return
	}

	var decodeErr *configcodec.DecodeError
	if errors.As(err, &decodeErr) {
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, message, err)
		return
	}

	utils.ErrorResponse(c, http.StatusBadGateway, message, err)
}

// Data Transfer Objects

// TriggerStimulationRequest carries the burst duration in milliseconds.
type TriggerStimulationRequest struct {
	DurationMs uint32 `json:"duration_ms" binding:"required"`
}

// SetIntensityRequest carries the stimulation amplitude in microamperes.
type SetIntensityRequest struct {
	IntensityUA uint32 `json:"intensity_uA" binding:"required"`
}
