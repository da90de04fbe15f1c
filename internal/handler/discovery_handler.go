// internal/handler/discovery_handler.go
package handler

import (
	"net/http"

	"smartvns/internal/service"
	"smartvns/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DiscoveryHandler handles device discovery HTTP requests
type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
	logger           *utils.ServiceLogger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discoveryService *service.DiscoveryService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
		logger:           utils.NewServiceLogger(logger, "discovery-handler"),
	}
}

// RegisterRoutes registers discovery routes
func (h *DiscoveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	discovery := router.Group("/discovery")
	{
		discovery.POST("/scan", h.Scan)
		discovery.GET("/scanners", h.ListScanners)
		discovery.POST("/register", h.RegisterDiscovered)
	}
}

// Scan scans for reachable SmartVNS devices
// @Summary Scan for devices
// @Description Scan all available transports for SmartVNS devices. An optional type restricts the scan to one transport.
// @Tags Discovery
// @Accept json
// @Produce json
// @Param type query string false "Scanner type" Enums(serial, usb, ble)
// @Success 200 {object} utils.APIResponse{data=[]discovery.DiscoveredDevice} "Scan completed"
// @Failure 500 {object} utils.APIResponse "Scan failed"
// @Router /discovery/scan [post]
func (h *DiscoveryHandler) Scan(c *gin.Context) {
	var (
		devices interface{}
		err     error
	)

	if scannerType := c.Query("type"); scannerType != "" {
		devices, err = h.discoveryService.ScanByType(c.Request.Context(), scannerType)
	} else {
		devices, err = h.discoveryService.Scan(c.Request.Context())
	}

	if err != nil {
		h.logger.Error("Device scan failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Device scan failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Scan completed", devices)
}

// ListScanners lists available scanner types
// @Summary List available scanners
// @Description List the scanner types currently usable on this host
// @Tags Discovery
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse "Scanners retrieved"
// @Router /discovery/scanners [get]
func (h *DiscoveryHandler) ListScanners(c *gin.Context) {
	scanners := h.discoveryService.AvailableScanners()
	utils.SuccessResponse(c, http.StatusOK, "Scanners retrieved", gin.H{
		"scanners": scanners,
	})
}

// RegisterDiscovered scans and registers any devices found
// @Summary Register discovered devices
// @Description Scan for devices and register every device not yet known to the system
// @Tags Discovery
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]model.Device} "Devices registered"
// @Failure 500 {object} utils.APIResponse "Registration failed"
// @Router /discovery/register [post]
func (h *DiscoveryHandler) RegisterDiscovered(c *gin.Context) {
	discovered, err := h.discoveryService.Scan(c.Request.Context())
	if err != nil {
		h.logger.Error("Device scan failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Device scan failed", err)
		return
	}

	registered, err := h.discoveryService.RegisterDiscovered(c.Request.Context(), discovered)
	if err != nil {
		h.logger.Error("Failed to register discovered devices", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to register discovered devices", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices registered", gin.H{
		"discovered": len(discovered),
		"registered": registered,
	})
}
