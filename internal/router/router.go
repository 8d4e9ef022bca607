// Package router assembles the HTTP surface of the ledger API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fluxo/internal/config"
	_ "fluxo/internal/docs" // Register swagger docs
	"fluxo/internal/events"
	"fluxo/internal/handlers"
	"fluxo/internal/middleware"
	"fluxo/internal/models"
	"fluxo/internal/services"
	"fluxo/internal/telemetry"
	"fluxo/internal/validator"
)

// Services bundles every service the handlers depend on.
type Services struct {
	Box         services.BoxServicer
	Movement    services.MovementServicer
	Bill        services.BillServicer
	Consistency services.ConsistencyServicer
	Report      services.ReportServicer
	Auxiliary   services.AuxiliaryServicer
	Audit       services.AuditServicer
	Auth        services.AuthServicer
}

// NewServices wires the ledger services over db.
func NewServices(db *gorm.DB, cfg *config.Config, publisher events.Publisher, metrics *telemetry.Metrics) Services {
	maintainer := services.NewBalanceMaintainer(models.PrincipalBoxID)
	return Services{
		Box:         services.NewBoxService(db, models.PrincipalBoxID),
		Movement:    services.NewMovementService(db, maintainer, publisher, metrics),
		Bill:        services.NewBillService(db, maintainer, publisher, metrics),
		Consistency: services.NewConsistencyService(db, models.PrincipalBoxID, publisher, metrics),
		Report: services.NewReportService(db, models.PrincipalBoxID, services.ReportOptions{
			IncludePrincipalInSystemTotal: cfg.ReportIncludePrincipalTotal,
			AbsoluteOutflows:              cfg.ReportAbsoluteOutflows,
			TargetsGroup:                  cfg.ReportTargetsGroup,
		}),
		Auxiliary: services.NewAuxiliaryService(db),
		Audit:     services.NewAuditService(db),
		Auth:      services.NewAuthService(cfg.AuthPasswordHash, cfg.JWTSecret, cfg.JWTExpirationDur),
	}
}

// Options tunes the non-ledger endpoints.
type Options struct {
	// MetricsAPIKey guards /metrics when set.
	MetricsAPIKey string
	// Ping backs /api/health; nil reports healthy.
	Ping func() error
}

// New builds the gin engine with every route registered.
func New(svc Services, metrics *telemetry.Metrics, opts Options) *gin.Engine {
	boxHandler := handlers.NewBoxHandler(svc.Box, svc.Audit)
	movementHandler := handlers.NewMovementHandler(svc.Movement, svc.Audit)
	statementHandler := handlers.NewStatementHandler(svc.Movement, svc.Report)
	billHandler := handlers.NewBillHandler(svc.Bill, svc.Audit)
	consistencyHandler := handlers.NewConsistencyHandler(svc.Consistency, svc.Audit)
	auxiliaryHandler := handlers.NewAuxiliaryHandler(svc.Auxiliary, svc.Audit)
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Audit)

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Tracing())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		if opts.Ping != nil {
			if err := opts.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metrics != nil {
		metricsHandler := gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		if opts.MetricsAPIKey != "" {
			router.GET("/metrics", middleware.APIKey(opts.MetricsAPIKey), metricsHandler)
		} else {
			router.GET("/metrics", metricsHandler)
		}
	}

	// Public routes
	router.POST("/auth/token", authHandler.IssueToken)

	// Protected routes
	protected := router.Group("/")
	protected.Use(middleware.Auth(svc.Auth))

	// Box routes
	boxes := protected.Group("/caixas")
	boxes.POST("", boxHandler.CreateBox)
	boxes.GET("", boxHandler.ListBoxes)
	boxes.GET("/:id", boxHandler.GetBox)
	boxes.GET("/:id/verificar-integridade", consistencyHandler.CheckBox)
	boxes.POST("/:id/reset", consistencyHandler.RolloverBox)

	// Movement routes
	movements := protected.Group("/movimentacoes")
	movements.POST("", movementHandler.CreateMovement)
	movements.GET("/:id", movementHandler.GetMovement)
	movements.PUT("/:id", movementHandler.UpdateMovement)
	movements.DELETE("/:id", movementHandler.DeleteMovement)

	// Statement and reports
	statement := protected.Group("/extrato")
	statement.GET("", statementHandler.ListMovements)
	statement.GET("/resumo", statementHandler.Summary)
	statement.GET("/categorias", statementHandler.CategoryReport)
	statement.GET("/:boxId", statementHandler.ListBoxMovements)
	protected.GET("/relatorio-pdf", statementHandler.PDFReport)

	// Bill routes
	bills := protected.Group("/contas")
	bills.POST("", billHandler.CreateBill)
	bills.GET("", billHandler.ListBills)
	bills.GET("/:id", billHandler.GetBill)
	bills.PUT("/:id", billHandler.UpdateBill)
	bills.DELETE("/:id", billHandler.DeleteBill)
	bills.POST("/:id/pagar", billHandler.PayBill)

	// Auxiliary records
	auxiliary := protected.Group("/adicionais")
	auxiliary.POST("", auxiliaryHandler.CreateAuxiliary)
	auxiliary.GET("", auxiliaryHandler.ListAuxiliary)
	auxiliary.GET("/busca", auxiliaryHandler.FindByKey)
	auxiliary.GET("/:id", auxiliaryHandler.GetAuxiliary)
	auxiliary.PUT("/:id", auxiliaryHandler.UpdateAuxiliary)
	auxiliary.DELETE("/:id", auxiliaryHandler.DeleteAuxiliary)

	// Principal rollover
	principal := protected.Group("/principal")
	principal.GET("/verificar-integridade", consistencyHandler.CheckPrincipal)
	principal.POST("/criar-movimentacoes-ajuste", consistencyHandler.SeedPrincipal)

	return router
}
