package router

import (
	"time"

	"github.com/AngeYobo/oxalio/internal/config"
	"github.com/AngeYobo/oxalio/internal/dgi"
	"github.com/AngeYobo/oxalio/internal/handler"
	"github.com/AngeYobo/oxalio/internal/infra"
	"github.com/AngeYobo/oxalio/internal/middleware"
	"github.com/AngeYobo/oxalio/internal/repository"
	"github.com/AngeYobo/oxalio/internal/service"
	"github.com/AngeYobo/oxalio/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dgiClient dgi.Client, dgiCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	invoiceRepo := repository.NewInvoiceRepository(db)
	terminalRepo := repository.NewTerminalRepository(db)
	eventRepo := repository.NewTerminalEventRepository(db)
	locationRepo := repository.NewTerminalLocationRepository(db)
	commandRepo := repository.NewTerminalCommandRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	invoiceSvc := service.NewInvoiceService(invoiceRepo, dgiClient, cfg, dispatcher)
	terminalSvc := service.NewTerminalService(terminalRepo, eventRepo, cfg)
	locationSvc := service.NewLocationService(locationRepo, terminalRepo)
	commandSvc := service.NewCommandService(commandRepo, terminalRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	invoicesH := handler.NewInvoicesHandler(invoiceSvc, cfg.PDFStoragePath)
	fneH := handler.NewFneHandler(invoiceSvc)
	terminalsH := handler.NewTerminalsHandler(terminalSvc)
	eventsH := handler.NewEventsHandler(terminalSvc)
	locationsH := handler.NewLocationsHandler(locationSvc)
	commandsH := handler.NewCommandsHandler(commandSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, dgiCB))

	// Refund addresses invoices by their DGI identity, hence the separate
	// /api/fne prefix outside the versioned group.
	r.POST("/api/fne/invoices/:idOrRef/refund", fneH.Refund)

	api := r.Group("/api/v1")
	{
		invoices := api.Group("/invoices")
		{
			invoices.POST("", invoicesH.Create)
			invoices.GET("", invoicesH.List)
			invoices.GET("/number/:number", invoicesH.GetByNumber)
			invoices.GET("/:id", invoicesH.Get)
			invoices.PUT("/:id", invoicesH.Update)
			invoices.DELETE("/:id", invoicesH.Delete)
			invoices.POST("/:id/submit-to-dgi", invoicesH.Submit)
			invoices.GET("/:id/pdf", invoicesH.Pdf)
		}

		terne := api.Group("/terne")
		{
			terne.POST("/terminals", terminalsH.Enroll)
			terne.GET("/terminals", terminalsH.List)
			terne.GET("/terminals/:id", terminalsH.Get)
			terne.PATCH("/terminals/:id", terminalsH.Update)
			terne.POST("/terminals/:id/activate", terminalsH.Activate)
			terne.POST("/terminals/:id/suspend", terminalsH.Suspend)
			terne.POST("/terminals/:id/retire", terminalsH.Retire)

			// Device-originated telemetry carries the enrollment token
			deviceMW := middleware.DeviceAuth(cfg.DeviceTokenSecret)
			terne.POST("/terminals/:id/heartbeat", deviceMW, terminalsH.Heartbeat)
			terne.POST("/terminals/:id/events", deviceMW, eventsH.Ingest)
			terne.POST("/terminals/:id/locations", deviceMW, locationsH.Ingest)

			terne.GET("/terminals/:id/events", eventsH.List)
			terne.GET("/terminals/:id/locations", locationsH.History)
			terne.GET("/terminals/:id/location/latest", locationsH.Latest)

			terne.POST("/terminals/:id/commands", commandsH.Create)
			terne.GET("/terminals/:id/commands", commandsH.List)
			terne.GET("/commands/:cmdId", commandsH.Get)
			terne.PATCH("/commands/:cmdId", commandsH.Update)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
