package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/auth"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/cache"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/database"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/handlers"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/logging"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/middleware"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/payments"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/services"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/storage"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	slog.SetDefault(logger)

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	archive, err := storage.NewArchive(&cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize archive storage", "error", err)
		os.Exit(1)
	}

	// Repositories
	users := repository.NewPostgresUserRepository(pool)
	tenants := repository.NewPostgresTenantRepository(pool)
	plans := repository.NewPostgresPlanRepository(pool)
	roles := repository.NewPostgresRoleRepository(pool)
	subscriptions := repository.NewPostgresSubscriptionRepository(pool)
	paymentRepo := repository.NewPostgresPaymentRepository(pool)
	events := repository.NewPostgresWebhookEventRepository(pool)
	appointments := repository.NewPostgresAppointmentRepository(pool)
	sales := repository.NewPostgresSaleRepository(pool)
	employees := repository.NewPostgresEmployeeRepository(pool)

	// Authorization
	resolver := auth.NewResolver(repository.Identity{Users: users, Roles: roles}, &cfg.JWT)
	gate := authz.NewGate(repository.Catalog{Tenants: tenants, Plans: plans}, redisClient)
	limits := authz.NewLimits(repository.SeatCounts{Users: users, Roles: roles})

	// Payments
	provider := payments.NewStripeProvider(&cfg.Stripe)
	billing := services.NewBillingService(services.BillingDeps{
		Users:         users,
		Tenants:       tenants,
		Plans:         plans,
		Roles:         roles,
		Subscriptions: subscriptions,
		Payments:      paymentRepo,
		Events:        events,
		Provider:      provider,
		Archive:       archive,
		Notifier:      redisClient,
		Logger:        logger,
	})
	tenantService := services.NewTenantService(tenants, plans, redisClient, logger)

	router := setupRouter(
		cfg,
		resolver,
		gate,
		handlers.NewAuthHandler(users, cfg),
		handlers.NewAppointmentHandler(appointments),
		handlers.NewSaleHandler(sales),
		handlers.NewEmployeeHandler(employees, tenants, roles, limits),
		handlers.NewUserHandler(users, tenants, roles, limits),
		handlers.NewBillingHandler(billing, plans),
		handlers.NewAdminHandler(tenantService, plans),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("api listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("api exited")
}

func setupRouter(
	cfg *config.Config,
	resolver *auth.Resolver,
	gate *authz.Gate,
	authHandler *handlers.AuthHandler,
	appointmentHandler *handlers.AppointmentHandler,
	saleHandler *handlers.SaleHandler,
	employeeHandler *handlers.EmployeeHandler,
	userHandler *handlers.UserHandler,
	billingHandler *handlers.BillingHandler,
	adminHandler *handlers.AdminHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "api"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Use(
		middleware.Authenticate(resolver, &cfg.JWT),
		middleware.TenantGuard(&cfg.JWT, middleware.TenantGuardExemptPrefixes),
	)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", middleware.RequireAuth(), authHandler.Me)

		// provider webhooks authenticate by signature, not by principal
		api.POST("/webhooks/stripe", billingHandler.Webhook)

		api.GET("/billing/plans", billingHandler.ListPlans)
		billing := api.Group("/billing", middleware.RequireAuth())
		{
			billing.POST("/payments", billingHandler.CreatePayment)
			billing.GET("/payments", billingHandler.ListPayments)
			billing.GET("/payments/:id", billingHandler.GetPayment)
			billing.POST("/payments/:id/confirm", billingHandler.ConfirmPayment)
			billing.GET("/subscription", billingHandler.GetSubscription)
		}

		appointments := api.Group("/appointments",
			middleware.RequireAuth(),
			middleware.RequireFeature(gate, "appointments"),
			middleware.RequirePermission(authz.PermManageAppointments),
		)
		{
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("", appointmentHandler.List)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.PUT("/:id", appointmentHandler.Update)
			appointments.DELETE("/:id", appointmentHandler.Delete)
		}

		sales := api.Group("/sales",
			middleware.RequireAuth(),
			middleware.RequireFeature(gate, "pos"),
			middleware.RequirePermission(authz.PermManagePOS),
		)
		{
			sales.POST("", saleHandler.Create)
			sales.GET("", saleHandler.List)
			sales.GET("/:id", saleHandler.Get)
		}

		employees := api.Group("/employees",
			middleware.RequireAuth(),
			middleware.RequirePermission(authz.PermManageEmployees),
		)
		{
			employees.POST("", employeeHandler.Create)
			employees.GET("", employeeHandler.List)
			employees.GET("/:id", employeeHandler.Get)
			employees.PUT("/:id", employeeHandler.Update)
		}

		users := api.Group("/users",
			middleware.RequireAuth(),
			middleware.RequirePermission(authz.PermManageSettings),
		)
		{
			users.POST("", userHandler.Create)
		}
	}

	admin := router.Group("/admin", middleware.RequireSuperuser())
	{
		admin.POST("/plans", adminHandler.CreatePlan)
		admin.PUT("/plans/:id", adminHandler.UpdatePlan)
		admin.GET("/tenants", adminHandler.ListTenants)
		admin.GET("/tenants/:id", adminHandler.GetTenant)
		admin.PUT("/tenants/:id/plan", adminHandler.ChangeTenantPlan)
		admin.PUT("/tenants/:id/status", adminHandler.SetTenantStatus)
	}

	return router
}
