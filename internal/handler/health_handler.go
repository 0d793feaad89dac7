// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mcintosh-service/internal/config"
	"mcintosh-service/internal/database"
	"mcintosh-service/internal/model"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db            *database.DB
	deviceService *service.DeviceService
	config        *config.Config
	startedAt     time.Time
	logger        *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. db is nil when the audit
// log is kept in memory.
func NewHealthHandler(db *database.DB, deviceService *service.DeviceService, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:            db,
		deviceService: deviceService,
		config:        config,
		startedAt:     time.Now(),
		logger:        utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/health/db", h.DatabaseHealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get overall service health including the processor connection and database
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	// Processor check; a disconnected processor degrades but does not fail the service
	status := h.deviceService.Status()
	stats := h.deviceService.ConnectionStats()
	deviceCheck := CheckResult{
		Status:  "healthy",
		Message: "Processor " + string(status),
		Data: map[string]interface{}{
			"model":         h.deviceService.Profile().ID,
			"commands_sent": stats.CommandsSent,
			"timeouts":      stats.Timeouts,
		},
	}
	if status != model.DeviceStatusOnline {
		deviceCheck.Status = "degraded"
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	}
	health.Checks["device"] = deviceCheck

	// Database check
	if h.db == nil {
		health.Checks["database"] = CheckResult{
			Status:  "healthy",
			Message: "Database disabled, audit log kept in memory",
		}
	} else if dbErr := h.db.HealthCheck(); dbErr != nil {
		health.Status = "unhealthy"
		health.Checks["database"] = CheckResult{
			Status:  "unhealthy",
			Message: dbErr.Error(),
		}
	} else {
		dbStats := h.db.GetStats()
		health.Checks["database"] = CheckResult{
			Status:  "healthy",
			Message: "Database connection OK",
			Data: map[string]interface{}{
				"open_connections": dbStats.OpenConnections,
				"in_use":           dbStats.InUse,
				"idle":             dbStats.Idle,
			},
		}
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// DatabaseHealthCheck checks database connectivity
// @Summary Database health check
// @Description Check database connectivity and pool statistics
// @Tags Health
// @Produce json
// @Success 200 {object} utils.APIResponse "Database is healthy"
// @Failure 404 {object} utils.APIResponse "Database disabled"
// @Failure 503 {object} utils.APIResponse "Database is unhealthy"
// @Router /health/db [get]
func (h *HealthHandler) DatabaseHealthCheck(c *gin.Context) {
	if h.db == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Database disabled", nil)
		return
	}

	startTime := time.Now()
	if err := h.db.HealthCheck(); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Database unhealthy", err)
		return
	}

	stats := h.db.GetStats()
	utils.SuccessResponse(c, http.StatusOK, "Database is healthy", gin.H{
		"status":           "healthy",
		"response_time_ms": time.Since(startTime).Milliseconds(),
		"stats": gin.H{
			"open_connections":    stats.OpenConnections,
			"in_use":              stats.InUse,
			"idle":                stats.Idle,
			"wait_count":          stats.WaitCount,
			"wait_duration":       stats.WaitDuration,
			"max_idle_closed":     stats.MaxIdleClosed,
			"max_lifetime_closed": stats.MaxLifetimeClosed,
		},
	})
}

// ReadinessCheck reports whether the processor is connected
// @Summary Readiness check
// @Description Ready once the processor connection is up
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if status := h.deviceService.Status(); status != model.DeviceStatusOnline {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "processor " + string(status),
		})
		return
	}
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "database not available",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck reports the process is serving
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
