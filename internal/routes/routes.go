// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"mcintosh-service/internal/config"
	"mcintosh-service/internal/database"
	"mcintosh-service/internal/handler"
	"mcintosh-service/internal/middleware"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config           *config.Config
	logger           *zap.Logger
	db               *database.DB
	deviceService    *service.DeviceService
	operationService *service.OperationService
	discoveryService *service.DiscoveryService
	poller           *service.StatusPoller
	wsHandler        *handler.WebSocketHandler
}

// NewRouter creates a new router instance. db may be nil.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db *database.DB,
	deviceService *service.DeviceService,
	operationService *service.OperationService,
	discoveryService *service.DiscoveryService,
	poller *service.StatusPoller,
	eventBus *handler.EventBus,
) *Router {
	return &Router{
		config:           config,
		logger:           logger,
		db:               db,
		deviceService:    deviceService,
		operationService: operationService,
		discoveryService: discoveryService,
		poller:           poller,
		wsHandler:        handler.NewWebSocketHandler(poller, eventBus, config.Security.AllowedOrigins, logger),
	}
}

// WebSocketHandler returns the handler whose Run loop feeds the streams
func (r *Router) WebSocketHandler() *handler.WebSocketHandler {
	return r.wsHandler
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	// Set Gin mode
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.db, r.deviceService, r.config, r.logger)
	deviceHandler := handler.NewDeviceHandler(r.deviceService, r.operationService, r.poller, r.logger)
	controlHandler := handler.NewControlHandler(r.deviceService, r.operationService, r.logger)
	operationHandler := handler.NewOperationHandler(r.operationService, r.logger)
	discoveryHandler := handler.NewDiscoveryHandler(r.discoveryService, r.logger)

	// Health check routes
	healthHandler.RegisterRoutes(router.Group(""))

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	deviceHandler.RegisterRoutes(apiV1)
	controlHandler.RegisterRoutes(apiV1)
	operationHandler.RegisterRoutes(apiV1)
	discoveryHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	r.wsHandler.RegisterRoutes(router.Group("/ws"))
	apiV1.GET("/ws/stats", func(c *gin.Context) {
		utils.SuccessResponse(c, http.StatusOK, "WebSocket statistics retrieved", r.wsHandler.GetConnectionStats())
	})

	// Documentation routes
	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
