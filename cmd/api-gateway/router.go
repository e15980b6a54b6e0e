package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/handler"
	"github.com/dojokai/dojo-api/internal/middleware"
	"github.com/dojokai/dojo-api/internal/models"
	"github.com/dojokai/dojo-api/internal/repository"
	"github.com/dojokai/dojo-api/internal/service"
	"github.com/dojokai/dojo-api/pkg/config"
	"github.com/dojokai/dojo-api/pkg/jobs"
	"github.com/dojokai/dojo-api/pkg/logger"
	corsmiddleware "github.com/dojokai/dojo-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dojokai/dojo-api/pkg/middleware/requestid"
	"github.com/dojokai/dojo-api/pkg/storage"
)

// application bundles the wired dependency graph so startup tasks and
// shutdown hooks can reach the pieces they need.
type application struct {
	cfg    *config.Config
	logger *zap.Logger
	router *gin.Engine

	belts   *service.BeltService
	seeds   *service.SeedService
	backups *service.BackupService
	queue   *jobs.Queue

	cleanupCancel context.CancelFunc
}

func buildApplication(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*application, error) {
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	guardianRepo := repository.NewGuardianRepository(db)
	beltRepo := repository.NewBeltRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	backupRepo := repository.NewBackupRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheStore service.CacheStore
	if redisClient != nil {
		cacheStore = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheStore, metricsSvc, cfg.Billing.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "dojo-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)

	settingsSvc := service.NewSettingsService(settingsRepo, cacheSvc, userRepo, validate, logr, models.BillingSettings{
		Currency:        cfg.Billing.Currency,
		BasePrice:       cfg.Billing.BasePrice,
		RegistrationFee: cfg.Billing.RegistrationFee,
		ExchangeRate:    cfg.Billing.ExchangeRate,
		DiscountPct:     cfg.Billing.DiscountPct,
		SurchargePct:    cfg.Billing.SurchargePct,
		CutoffDay:       cfg.Billing.CutoffDay,
		CountryMode:     cfg.Locale.CountryMode,
	})

	beltSvc := service.NewBeltService(beltRepo, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, settingsSvc, validate, logr)
	guardianSvc := service.NewGuardianService(guardianRepo, settingsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, categoryRepo, beltRepo, guardianRepo, settingsSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, categoryRepo, settingsSvc, userRepo, validate, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, studentRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)
	reportSvc := service.NewReportService(paymentSvc, settingsSvc, logr)
	seedSvc := service.NewSeedService(studentRepo, guardianRepo, categoryRepo, beltRepo, userRepo, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, logr)

	var backupSvc *service.BackupService
	var queue *jobs.Queue
	if cfg.Backups.Enabled {
		store, err := storage.NewLocalStorage(cfg.Backups.StorageDir)
		if err != nil {
			return nil, err
		}
		signer := storage.NewSignedURLSigner(cfg.Backups.SignedURLSecret, cfg.Backups.SignedURLTTL)
		backupSvc = service.NewBackupService(backupRepo, store, signer, userRepo, service.BackupConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Backups.SignedURLTTL,
		}, logr)
		queue = jobs.NewQueue("backups", backupSvc.Handle, jobs.QueueConfig{
			Workers:    cfg.Backups.WorkerConcurrency,
			MaxRetries: cfg.Backups.WorkerRetries,
			Logger:     logr,
		})
		backupSvc.SetQueue(queue)
	}

	app := &application{
		cfg:     cfg,
		logger:  logr,
		belts:   beltSvc,
		seeds:   seedSvc,
		backups: backupSvc,
		queue:   queue,
	}

	app.router = buildRouter(cfg, logr, metricsSvc, userRepo, routeHandlers{
		auth:        handler.NewAuthHandler(authSvc),
		users:       handler.NewUserHandler(userSvc),
		students:    handler.NewStudentHandler(studentSvc),
		guardians:   handler.NewGuardianHandler(guardianSvc),
		belts:       handler.NewBeltHandler(beltSvc),
		categories:  handler.NewCategoryHandler(categorySvc),
		payments:    handler.NewPaymentHandler(paymentSvc, metricsSvc),
		evaluations: handler.NewEvaluationHandler(evaluationSvc),
		schedules:   handler.NewScheduleHandler(scheduleSvc),
		settings:    handler.NewSettingsHandler(settingsSvc),
		reports:     handler.NewReportHandler(reportSvc),
		backups:     newBackupHandler(backupSvc),
		seeds:       handler.NewSeedHandler(seedSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc),
		authSvc:     authSvc,
	})

	return app, nil
}

func newBackupHandler(svc *service.BackupService) *handler.BackupHandler {
	if svc == nil {
		return nil
	}
	return handler.NewBackupHandler(svc)
}

// startup runs tasks that need the database but must complete before the
// server accepts traffic.
func (a *application) startup(ctx context.Context) error {
	if err := a.belts.EnsureDefaults(ctx); err != nil {
		return err
	}
	if a.cfg.Seed.Enabled {
		if err := a.seeds.EnsureAdmin(ctx); err != nil {
			return err
		}
	}
	if a.queue != nil {
		a.queue.Start(ctx)
	}
	if a.backups != nil {
		cleanupCtx, cancel := context.WithCancel(ctx)
		a.cleanupCancel = cancel
		a.backups.StartCleanup(cleanupCtx, a.cfg.Backups.CleanupInterval)
	}
	return nil
}

func (a *application) shutdown() {
	if a.cleanupCancel != nil {
		a.cleanupCancel()
	}
	if a.queue != nil {
		a.queue.Stop()
	}
}

type routeHandlers struct {
	auth        *handler.AuthHandler
	users       *handler.UserHandler
	students    *handler.StudentHandler
	guardians   *handler.GuardianHandler
	belts       *handler.BeltHandler
	categories  *handler.CategoryHandler
	payments    *handler.PaymentHandler
	evaluations *handler.EvaluationHandler
	schedules   *handler.ScheduleHandler
	settings    *handler.SettingsHandler
	reports     *handler.ReportHandler
	backups     *handler.BackupHandler
	seeds       *handler.SeedHandler
	metrics     *handler.MetricsHandler

	authSvc *service.AuthService
}

func buildRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, userRepo *repository.UserRepository, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", h.auth.Login)
	api.POST("/auth/refresh", h.auth.Refresh)
	if h.backups != nil {
		// The signed token in the URL is the credential here.
		api.GET("/backups/download/:token", h.backups.Download)
	}

	auth := api.Group("", middleware.JWT(h.authSvc))

	auth.POST("/auth/logout", h.auth.Logout)
	auth.POST("/auth/change-password", h.auth.ChangePassword)
	auth.GET("/auth/me", h.auth.Me)

	students := auth.Group("/students", middleware.Staff())
	students.GET("", h.students.List)
	students.GET("/:id", h.students.Get)
	students.POST("", h.students.Create)
	students.PUT("/:id", h.students.Update)
	students.PATCH("/:id/deactivate", h.students.Deactivate)
	students.DELETE("/:id", middleware.AdminOnly(), h.students.Delete)

	guardians := auth.Group("/guardians", middleware.Staff())
	guardians.GET("", h.guardians.List)
	guardians.GET("/lookup", h.guardians.Lookup)
	guardians.GET("/:id", h.guardians.Get)
	guardians.POST("", h.guardians.Create)
	guardians.PUT("/:id", h.guardians.Update)
	guardians.DELETE("/:id", middleware.AdminOnly(), h.guardians.Delete)

	belts := auth.Group("/belts", middleware.Staff())
	belts.GET("", h.belts.List)
	belts.GET("/:id", h.belts.Get)
	belts.POST("", middleware.AdminOnly(), h.belts.Create)
	belts.PUT("/:id", middleware.AdminOnly(), h.belts.Update)
	belts.DELETE("/:id", middleware.AdminOnly(), h.belts.Delete)

	categories := auth.Group("/categories", middleware.Staff())
	categories.GET("", h.categories.List)
	categories.GET("/:id", h.categories.Get)
	categories.POST("", middleware.AdminOnly(), h.categories.Create)
	categories.PUT("/:id", middleware.AdminOnly(), h.categories.Update)
	categories.DELETE("/:id", middleware.AdminOnly(), h.categories.Delete)

	payments := auth.Group("/payments", middleware.Staff())
	payments.GET("/preview/:student_id", h.payments.Preview)
	payments.POST("", h.payments.Submit)
	payments.GET("", h.payments.List)
	payments.GET("/collection", h.payments.MonthlyCollection)
	payments.GET("/:id", h.payments.Get)
	payments.PATCH("/:id/status", middleware.AdminOnly(), h.payments.UpdateStatus)

	evaluations := auth.Group("/evaluations", middleware.Staff())
	evaluations.GET("/exams", h.evaluations.Definitions)
	evaluations.GET("/exams/:exam_id/eligible", h.evaluations.Eligible)
	evaluations.GET("", h.evaluations.List)
	evaluations.GET("/:id", h.evaluations.Get)
	evaluations.POST("", h.evaluations.Create)
	evaluations.DELETE("/:id", h.evaluations.Delete)

	schedules := auth.Group("/schedules", middleware.Staff())
	schedules.GET("", h.schedules.List)
	schedules.POST("", middleware.AdminOnly(), h.schedules.Create)
	schedules.PUT("/:id", middleware.AdminOnly(), h.schedules.Update)
	schedules.DELETE("/:id", middleware.AdminOnly(), h.schedules.Delete)

	settings := auth.Group("/settings")
	settings.GET("/billing", middleware.Staff(), h.settings.GetBilling)
	settings.PUT("/billing", middleware.AdminOnly(), h.settings.UpdateBilling)
	settings.GET("/profile", middleware.Staff(), h.settings.GetProfile)
	settings.PUT("/profile", middleware.AdminOnly(), h.settings.UpdateProfile)
	settings.GET("/theme", middleware.Staff(), h.settings.GetTheme)
	settings.PUT("/theme", middleware.AdminOnly(), h.settings.UpdateTheme)

	users := auth.Group("/users")
	users.GET("", middleware.AdminOnly(), h.users.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.users.Get)
	users.POST("", middleware.AdminOnly(), middleware.Audit(userRepo, models.AuditActionUserCreate, "user"), h.users.Create)
	users.PUT("/:id", middleware.AdminOnly(), middleware.Audit(userRepo, models.AuditActionUserUpdate, "user"), h.users.Update)
	users.PATCH("/:id/language", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.users.SetLanguage)
	users.DELETE("/:id", middleware.AdminOnly(), middleware.Audit(userRepo, models.AuditActionUserDelete, "user"), h.users.Delete)

	if cfg.Reports.Enabled {
		reports := auth.Group("/reports", middleware.Staff())
		reports.GET("/monthly-collection", h.reports.MonthlyCollection)
		reports.GET("/receipt/:payment_id", h.reports.Receipt)
	}

	if h.backups != nil {
		backups := auth.Group("/backups", middleware.AdminOnly())
		backups.POST("", h.backups.Run)
		backups.GET("/:id", h.backups.Status)
	}

	if cfg.Metrics.Enabled {
		auth.GET("/metrics/snapshot", middleware.AdminOnly(), h.metrics.Snapshot)
	}

	if cfg.Seed.Enabled {
		auth.POST("/seed/demo", middleware.AdminOnly(), h.seeds.Run)
	}

	return r
}
