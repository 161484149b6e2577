package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    authService
	InvoiceUC invoiceService
	PDFUC     invoicePDFService
	ServiceUC catalogService
	UserUC    userService
	ReportUC  reportService
	JWTSecret string
	Cookie    CookieConfig
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddlewareWithCookie(deps.JWTSecret, deps.Cookie.Name)
	anyRole := RequireRole()
	staff := RequireRole(entity.RoleAdmin, entity.RoleEmployee)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth: login y logout públicos, verify con sesión
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/verify", requireAuth, anyRole, authHandler.Verify)

	// Catálogo
	serviceHandler := NewServiceHandler(deps.ServiceUC)
	services := api.Group("/services", requireAuth)
	services.Get("/", anyRole, serviceHandler.List)
	services.Post("/", staff, serviceHandler.Create)
	services.Put("/update", staff, serviceHandler.Update)
	services.Get("/:id", anyRole, serviceHandler.GetByID)
	services.Put("/:id", staff, serviceHandler.Update)

	// Facturas
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices := api.Group("/invoices", requireAuth)
	invoices.Get("/", anyRole, invoiceHandler.List)
	invoices.Post("/", staff, invoiceHandler.Create)
	invoices.Put("/pay/:id", staff, invoiceHandler.Pay)
	invoices.Get("/:id/pdf", anyRole, invoiceHandler.DownloadPDF)
	invoices.Put("/:id/update", staff, invoiceHandler.UpdateItems)
	invoices.Get("/:id", anyRole, invoiceHandler.GetByID)
	invoices.Put("/:id", staff, invoiceHandler.UpdateItems)

	// Usuarios (solo admin)
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/users", requireAuth, adminOnly)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)

	// Reportes (solo admin)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports := api.Group("/reports", requireAuth, adminOnly)
	reports.Get("/summary", reportHandler.GetSummary)
}
