// internal/handler/discovery_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
)

// DiscoveryHandler handles processor discovery requests
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
		discovery.GET("/scan", h.ScanDevices)
		discovery.POST("/verify", h.VerifyConnection)
		discovery.GET("/supported", h.GetSupportedModels)
		discovery.GET("/scanners", h.GetScanners)
	}
}

// ScanDevices scans for candidate processor connections
// @Summary Scan for processors
// @Description List serial ports and probe configured hosts on the IP control port
// @Tags Discovery
// @Produce json
// @Param type query string false "Scan type" Enums(all, serial, tcp) default(all)
// @Param timeout query string false "Scan timeout" default(30s)
// @Success 200 {object} utils.APIResponse{data=service.ScanResult} "Device scan completed"
// @Failure 400 {object} utils.APIResponse "Invalid scan request"
// @Router /discovery/scan [get]
func (h *DiscoveryHandler) ScanDevices(c *gin.Context) {
	req := &service.ScanRequest{
		ScanType: c.DefaultQuery("type", "all"),
		Timeout:  c.DefaultQuery("timeout", "30s"),
	}

	result, err := h.discoveryService.ScanDevices(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to scan devices", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to scan devices", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device scan completed", result)
}

// VerifyConnection checks a processor answers at a connection url
// @Summary Verify a connection
// @Description Open the url as the given model, ping it and read its name
// @Tags Discovery
// @Accept json
// @Produce json
// @Param request body service.VerifyRequest true "Connection to verify"
// @Success 200 {object} utils.APIResponse{data=service.VerifyResult} "Connection verified"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Router /discovery/verify [post]
func (h *DiscoveryHandler) VerifyConnection(c *gin.Context) {
	var req service.VerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.discoveryService.VerifyConnection(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Cannot verify connection", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Connection verified", result)
}

// GetSupportedModels returns the supported processor models
// @Summary Get supported models
// @Description Get every processor model with its capabilities
// @Tags Discovery
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]driver.ModelInfo} "Supported models retrieved"
// @Router /discovery/supported [get]
func (h *DiscoveryHandler) GetSupportedModels(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Supported models retrieved", h.discoveryService.GetSupportedModels())
}

// GetScanners returns the scanners available on this host
// @Summary Get available scanners
// @Tags Discovery
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]string} "Scanners retrieved"
// @Router /discovery/scanners [get]
func (h *DiscoveryHandler) GetScanners(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Scanners retrieved", h.discoveryService.GetAvailableScanners())
}
