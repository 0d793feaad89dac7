// internal/handler/operation_handler.go
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/internal/repository"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
)

// OperationHandler serves the command audit log
type OperationHandler struct {
	operationService *service.OperationService
	logger           *utils.ServiceLogger
}

// NewOperationHandler creates a new operation handler
func NewOperationHandler(operationService *service.OperationService, logger *zap.Logger) *OperationHandler {
	return &OperationHandler{
		operationService: operationService,
		logger:           utils.NewServiceLogger(logger, "operation-handler"),
	}
}

// RegisterRoutes registers operation-related routes
func (h *OperationHandler) RegisterRoutes(router *gin.RouterGroup) {
	operations := router.Group("/operations")
	{
		operations.GET("", h.ListOperations)
		operations.GET("/stats", h.GetOperationStats)
		operations.GET("/:operation_id", h.GetOperation)
	}
}

// GetOperation retrieves one audited command
// @Summary Get operation
// @Description Get an audited command by id
// @Tags Operations
// @Produce json
// @Param operation_id path string true "Operation ID"
// @Success 200 {object} utils.APIResponse{data=model.DeviceOperation} "Operation retrieved successfully"
// @Failure 400 {object} utils.APIResponse "Invalid operation ID"
// @Failure 404 {object} utils.APIResponse "Operation not found"
// @Router /operations/{operation_id} [get]
func (h *OperationHandler) GetOperation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("operation_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid operation ID", err)
		return
	}

	operation, err := h.operationService.GetOperation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Operation not found", err)
			return
		}
		h.logger.Error("Failed to get operation", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get operation", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Operation retrieved successfully", operation)
}

// ListOperations lists audited commands with filtering
// @Summary List operations
// @Description Get audited commands with filtering and pagination, newest first by default
// @Tags Operations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param operation_type query string false "Filter by operation type" Enums(POWER, VOLUME, MUTE, SOURCE, LOUDNESS, TRIM, LIPSYNC, ZONE2, PING, STATUS_CHECK)
// @Param status query string false "Filter by status" Enums(PENDING, SUCCESS, FAILED, TIMEOUT, NOT_CONNECTED)
// @Param start_date query string false "Start date filter (RFC3339)"
// @Param end_date query string false "End date filter (RFC3339)"
// @Param sort_order query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} utils.APIResponse{data=object{operations=[]model.DeviceOperation,pagination=service.PaginationResult}} "Operations retrieved successfully"
// @Failure 500 {object} utils.APIResponse "Internal server error"
// @Router /operations [get]
func (h *OperationHandler) ListOperations(c *gin.Context) {
	filter := &repository.OperationFilter{
		Page:      1,
		PerPage:   50,
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	// Parse pagination
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if perPage := c.Query("per_page"); perPage != "" {
		if pp, err := strconv.Atoi(perPage); err == nil && pp > 0 {
			filter.PerPage = pp
		}
	}

	// Parse filters
	if operationType := c.Query("operation_type"); operationType != "" {
		ot := model.OperationType(operationType)
		filter.OperationType = &ot
	}
	if status := c.Query("status"); status != "" {
		s := model.OperationStatus(status)
		filter.Status = &s
	}
	filter.StartDate = parseTimeQuery(c, "start_date")
	filter.EndDate = parseTimeQuery(c, "end_date")
	filter.Normalize()

	operations, pagination, err := h.operationService.ListOperations(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list operations", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list operations", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Operations retrieved successfully", gin.H{
		"operations": operations,
		"pagination": pagination,
	})
}

// GetOperationStats summarizes the audit log
// @Summary Operation statistics
// @Description Get counts by type and status and the average command duration
// @Tags Operations
// @Produce json
// @Param start_date query string false "Start date filter (RFC3339)"
// @Param end_date query string false "End date filter (RFC3339)"
// @Success 200 {object} utils.APIResponse{data=repository.OperationStats} "Operation statistics retrieved"
// @Router /operations/stats [get]
func (h *OperationHandler) GetOperationStats(c *gin.Context) {
	filter := &repository.OperationStatsFilter{
		StartDate: parseTimeQuery(c, "start_date"),
		EndDate:   parseTimeQuery(c, "end_date"),
	}

	stats, err := h.operationService.GetStats(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to get operation stats", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get operation stats", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Operation statistics retrieved", stats)
}

func parseTimeQuery(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
