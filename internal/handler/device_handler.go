// internal/handler/device_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
)

// DeviceHandler handles processor info and state requests
type DeviceHandler struct {
	deviceService    *service.DeviceService
	operationService *service.OperationService
	poller           *service.StatusPoller
	logger           *utils.ServiceLogger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(
	deviceService *service.DeviceService,
	operationService *service.OperationService,
	poller *service.StatusPoller,
	logger *zap.Logger,
) *DeviceHandler {
	return &DeviceHandler{
		deviceService:    deviceService,
		operationService: operationService,
		poller:           poller,
		logger:           utils.NewServiceLogger(logger, "device-handler"),
	}
}

// RegisterRoutes registers device-related routes
func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	device := router.Group("/device")
	{
		device.GET("", h.GetDevice)
		device.GET("/profile", h.GetProfile)
		device.GET("/connection", h.GetConnectionStats)
		device.GET("/diagnostics", h.GetDiagnostics)
		device.POST("/ping", h.PingDevice)
		device.POST("/reconnect", h.ReconnectDevice)
		device.GET("/state", h.GetState)
		device.POST("/state/refresh", h.RefreshState)
	}
}

// GetDevice returns the processor description
// @Summary Get processor
// @Description Get model, reported name, connection type and status of the processor
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.DeviceInfo} "Device retrieved successfully"
// @Router /device [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Device retrieved successfully", h.deviceService.Info())
}

// GetProfile returns the model profile
// @Summary Get model profile
// @Description Get the fixed timing, serial and capability settings of the configured model
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse{data=mcintosh.ModelProfile} "Profile retrieved successfully"
// @Router /device/profile [get]
func (h *DeviceHandler) GetProfile(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", h.deviceService.Profile())
}

// GetConnectionStats returns transport counters
// @Summary Get connection statistics
// @Description Get bytes, commands, timeouts and errors seen on the connection
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.ConnectionStats} "Connection statistics retrieved"
// @Router /device/connection [get]
func (h *DeviceHandler) GetConnectionStats(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Connection statistics retrieved", h.deviceService.ConnectionStats())
}

// GetDiagnostics returns redacted connection details
// @Summary Get diagnostics
// @Description Get connection details, the last error and model timings with the target redacted
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse "Diagnostics retrieved"
// @Router /device/diagnostics [get]
func (h *DeviceHandler) GetDiagnostics(c *gin.Context) {
	diagnostics := h.deviceService.Diagnostics()
	if err := h.poller.LastError(); err != nil {
		diagnostics["last_poll_error"] = err.Error()
	}
	utils.SuccessResponse(c, http.StatusOK, "Diagnostics retrieved", diagnostics)
}

// PingDevice checks the processor answers
// @Summary Ping processor
// @Description Send a ping command and report whether the processor answered
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Ping completed"
// @Failure 503 {object} utils.APIResponse "Processor not connected"
// @Failure 504 {object} utils.APIResponse "Processor did not answer"
// @Router /device/ping [post]
func (h *DeviceHandler) PingDevice(c *gin.Context) {
	req := &service.OperationRequest{
		OperationType: model.OperationTypePing,
		Action:        "ping",
		RequestID:     c.GetString("request_id"),
	}
	resp, err := h.operationService.Execute(c.Request.Context(), req, func(ctx context.Context) (interface{}, error) {
		return h.deviceService.Ping(ctx)
	})
	if err != nil {
		respondError(c, "Ping failed", h.deviceService.Redact(err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Ping completed", resp)
}

// ReconnectDevice closes and reopens the connection
// @Summary Reconnect processor
// @Description Reopen the connection and send the model's initialization command
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.DeviceInfo} "Processor reconnected"
// @Failure 503 {object} utils.APIResponse "Reconnect failed"
// @Router /device/reconnect [post]
func (h *DeviceHandler) ReconnectDevice(c *gin.Context) {
	if err := h.deviceService.Connect(c.Request.Context()); err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Reconnect failed", h.deviceService.Redact(err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Processor reconnected", h.deviceService.Info())
}

// GetState returns the last polled snapshot
// @Summary Get state
// @Description Get the processor state from the most recent polling cycle
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.StateSnapshot} "State retrieved"
// @Failure 404 {object} utils.APIResponse "No state polled yet"
// @Router /device/state [get]
func (h *DeviceHandler) GetState(c *gin.Context) {
	snap := h.poller.Latest()
	if snap == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "No state polled yet", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "State retrieved", snap)
}

// RefreshState runs a polling cycle now
// @Summary Refresh state
// @Description Poll the processor immediately and return the new snapshot
// @Tags Device
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.StateSnapshot} "State refreshed"
// @Failure 503 {object} utils.APIResponse "Processor not connected"
// @Failure 504 {object} utils.APIResponse "Processor did not answer"
// @Router /device/state/refresh [post]
func (h *DeviceHandler) RefreshState(c *gin.Context) {
	start := time.Now()
	snap, err := h.poller.PollOnce(c.Request.Context())
	if err != nil {
		h.logger.Warn("State refresh failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		respondError(c, "State refresh failed", h.deviceService.Redact(err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "State refreshed", snap)
}
