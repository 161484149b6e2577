// @title        Solar Invoicing API
// @version      1.0
// @description  Catálogo, facturación y reportes para la venta de equipos solares.
// @BasePath     /
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Solar-Invoicing-api/docs"
	appanalytics "github.com/jhoicas/Solar-Invoicing-api/internal/application/analytics"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/auth"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/billing"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/usecase"
	"github.com/jhoicas/Solar-Invoicing-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Solar-Invoicing-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Solar-Invoicing-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Solar-Invoicing-api/internal/interfaces/http"
	"github.com/jhoicas/Solar-Invoicing-api/pkg/config"
	"github.com/jhoicas/Solar-Invoicing-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	defaultTaxRate, err := decimal.NewFromString(cfg.Billing.DefaultTaxRate)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Billing.DefaultTaxRate).Msg("DEFAULT_TAX_RATE inválido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if applied, err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	} else if len(applied) > 0 {
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	m := metrics.New()

	userRepo := postgres.NewUserRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	itemRepo := postgres.NewInvoiceItemRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	invoiceUC := billing.NewInvoiceUseCase(txRunner, invoiceRepo, itemRepo, serviceRepo, billing.Options{
		DefaultTaxRate: defaultTaxRate,
		StoreTimeout:   cfg.DB.StoreTimeout,
		Observer:       m,
		Logger:         log,
	})
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, itemRepo, infrapdf.NewMarotoPDFGenerator(), cfg.Billing.CompanyName).
		WithStoreTimeout(cfg.DB.StoreTimeout)
	serviceUC := usecase.NewServiceUseCase(serviceRepo).WithStoreTimeout(cfg.DB.StoreTimeout)
	userUC := usecase.NewUserUseCase(userRepo).WithStoreTimeout(cfg.DB.StoreTimeout)
	reportUC := appanalytics.NewReportUseCase(reportRepo).WithStoreTimeout(cfg.DB.StoreTimeout)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}).WithStoreTimeout(cfg.DB.StoreTimeout)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	// recover va después de RequestLogger: un pánico se registra y se cuenta como 500.
	app.Use(httpRouter.RequestLogger(log, m))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath:    "/",
			FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
			Path:        "docs",
			Title:       "Solar Invoicing API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		InvoiceUC: invoiceUC,
		PDFUC:     invoicePDFUC,
		ServiceUC: serviceUC,
		UserUC:    userUC,
		ReportUC:  reportUC,
		JWTSecret: cfg.JWT.Secret,
		Cookie: httpRouter.CookieConfig{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.JWT.CookieSecure,
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
