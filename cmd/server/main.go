package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"restoran-pos/internal/admin"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/broker"
	"restoran-pos/internal/cache"
	"restoran-pos/internal/config"
	"restoran-pos/internal/dashboard"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/idempotency"
	"restoran-pos/internal/kitchen"
	"restoran-pos/internal/logging"
	"restoran-pos/internal/menu"
	"restoran-pos/internal/metrics"
	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"
	"restoran-pos/internal/reservations"
	"restoran-pos/internal/scheduler"
	"restoran-pos/internal/tags"
	"restoran-pos/internal/waitlist"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := database.Init(cfg); err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, menu cache disabled", zap.Error(err))
		} else {
			cache.Default = rc
			defer rc.Close()
		}
		cancel()
	}

	if cfg.AMQPURL != "" {
		pub, err := broker.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("amqp unreachable, kitchen events disabled", zap.Error(err))
		} else {
			broker.Default = pub
			defer pub.Close()
		}
	}

	errs := httpx.NewErrorMapper()
	pos.RegisterErrors(errs)
	menu.RegisterErrors(errs)
	tags.RegisterErrors(errs)
	waitlist.RegisterErrors(errs)
	reservations.RegisterErrors(errs)
	admin.RegisterErrors(errs)

	app := fiber.New(fiber.Config{ErrorHandler: errs.ErrorHandler()})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(metrics.Middleware())
	app.Use(requestid.New())
	app.Use(httpx.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Merchant-ID",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Public
	api.Post("/auth/register-platform-admin", auth.RegisterPlatformAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/logout", auth.LogoutHandler(cfg))
	api.Get("/invitations/:token", admin.LookupInvitationHandler())
	api.Post("/invitations/:token/accept", admin.AcceptInvitationHandler())
	api.Get("/menu/public/:merchant_id", menu.PublicMenuHandler(cfg.CacheTTL))

	protected := api.Group("", auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler())

	// Platform personnel
	platform := protected.Group("/admin", auth.RequirePlatform())
	platform.Get("/merchants", admin.ListMerchantsHandler())
	platform.Get("/merchants/search", admin.SearchMerchantsHandler())
	platform.Get("/merchants/:id", admin.GetMerchantHandler())
	platform.Get("/merchants/:id/locations", admin.ListLocationsHandler())

	platformAdmin := auth.RequirePlatform(models.RolePlatformAdmin)
	platform.Post("/merchants", platformAdmin, admin.CreateMerchantHandler())
	platform.Put("/merchants/:id", platformAdmin, admin.UpdateMerchantHandler())
	platform.Post("/merchants/:id/locations", platformAdmin, admin.CreateLocationHandler())
	platform.Put("/locations/:id", platformAdmin, admin.UpdateLocationHandler())
	platform.Post("/cache/clear", platformAdmin, admin.ClearCacheHandler())

	// Merchant scoped
	m := protected.Group("", auth.MerchantScope())

	idem := idempotency.Middleware(idempotency.Config{
		DB:  func() *gorm.DB { return database.DB },
		TTL: cfg.IdempotencyTTL,
	})
	managers := auth.RequireRole(models.RoleOwner, models.RoleManager)
	floor := auth.RequireRole(models.RoleOwner, models.RoleManager, models.RoleServer)
	kitchenStaff := auth.RequireRole(models.RoleOwner, models.RoleManager, models.RoleKitchen)

	m.Get("/sessions", floor, pos.ListSessionsHandler())
	m.Post("/sessions", floor, idem, pos.OpenSessionHandler())
	m.Get("/sessions/:id", floor, pos.GetSessionHandler())
	m.Post("/sessions/:id/close", floor, idem, pos.CloseSessionHandler())
	m.Post("/sessions/:id/transfer", floor, idem, pos.TransferSessionHandler())
	m.Post("/sessions/:id/seats", floor, idem, pos.AddSeatHandler())
	m.Delete("/sessions/:id/seats/:seat_id", floor, idem, pos.RemoveSeatHandler())
	m.Post("/sessions/:id/waves", floor, idem, pos.CreateWaveHandler())
	m.Post("/sessions/:id/items", floor, idem, pos.AddItemsHandler())
	m.Post("/sessions/:id/waves/:wave/fire", floor, idem, pos.FireWaveHandler())
	m.Post("/sessions/:id/payments", floor, idem, pos.RecordPaymentHandler())
	m.Get("/sessions/:id/events", floor, pos.ListEventsHandler())
	m.Post("/sessions/:id/tags/:tag_id", floor, tags.AttachHandler())
	m.Delete("/sessions/:id/tags/:tag_id", floor, tags.DetachHandler())
	m.Post("/orders/:id/advance", idem, pos.AdvanceWaveHandler())
	m.Post("/order-items/:id/void", managers, idem, pos.VoidItemHandler())
	m.Post("/order-items/:id/refire", idem, pos.RefireItemHandler())

	m.Get("/kitchen/board", kitchenStaff, kitchen.BoardHandler(cfg.KitchenDelay))
	m.Post("/kitchen/orders/:id/bump", kitchenStaff, kitchen.BumpHandler())
	m.Post("/kitchen/items/:id/bump", kitchenStaff, kitchen.BumpItemHandler())

	m.Get("/menu/categories", menu.ListCategoriesHandler())
	m.Post("/menu/categories", managers, menu.CreateCategoryHandler())
	m.Put("/menu/categories/reorder", managers, menu.ReorderCategoriesHandler())
	m.Put("/menu/categories/:id", managers, menu.UpdateCategoryHandler())
	m.Delete("/menu/categories/:id", managers, menu.DeleteCategoryHandler())
	m.Get("/menu/items", menu.ListItemsHandler())
	m.Post("/menu/items", managers, menu.CreateItemHandler())
	m.Put("/menu/items/reorder", managers, menu.ReorderItemsHandler())
	m.Put("/menu/items/:id", managers, menu.UpdateItemHandler())
	m.Delete("/menu/items/:id", managers, menu.DeleteItemHandler())
	m.Post("/menu/import", managers, menu.ImportHandler())

	m.Get("/tags", tags.ListHandler())
	m.Post("/tags", managers, tags.CreateHandler())
	m.Put("/tags/:id", managers, tags.UpdateHandler())
	m.Delete("/tags/:id", managers, tags.DeleteHandler())

	m.Get("/waitlist", floor, waitlist.ListHandler())
	m.Post("/waitlist", floor, waitlist.AddHandler())
	m.Post("/waitlist/:id/notify", floor, waitlist.NotifyHandler())
	m.Post("/waitlist/:id/seat", floor, waitlist.SeatHandler())
	m.Post("/waitlist/:id/cancel", floor, waitlist.CancelHandler())

	m.Get("/reservations", floor, reservations.ListHandler())
	m.Post("/reservations", floor, reservations.CreateHandler())
	m.Post("/reservations/:id/cancel", floor, reservations.CancelHandler())
	m.Post("/reservations/:id/no-show", floor, reservations.NoShowHandler())
	m.Post("/reservations/:id/seat", floor, reservations.SeatHandler())

	m.Get("/tables", admin.ListTablesHandler())
	m.Post("/tables", managers, admin.CreateTableHandler())
	m.Put("/tables/:id", managers, admin.UpdateTableHandler())
	m.Delete("/tables/:id", managers, admin.DeleteTableHandler())

	m.Get("/staff", managers, admin.ListStaffHandler())
	m.Post("/invitations", managers, admin.CreateInvitationHandler())

	m.Get("/dashboard/sales-chart", managers, dashboard.SalesChartHandler())
	m.Get("/dashboard/summary", managers, dashboard.SummaryHandler())

	sched := scheduler.New(logger)
	dbFn := func() *gorm.DB { return database.DB }
	jobs := []scheduler.Job{
		scheduler.IdempotencyPurge(dbFn, cfg.IdempotencyPurgeSpec, logger),
		scheduler.KitchenDelayScan(&kitchen.DelayScanner{DB: dbFn, Fallback: cfg.KitchenDelay}, cfg.KitchenScanSpec, logger),
	}
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			logger.Fatal("scheduler", zap.Error(err))
		}
	}
	sched.Start()

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Fatal("http server stopped", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HTTPPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sched.Stop(ctx)
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
