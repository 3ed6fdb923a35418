package router

import (
	"property-crm/internal/handler"
	"property-crm/internal/middleware"
	"property-crm/internal/models"
	"property-crm/internal/repository"
	"property-crm/internal/service"
	"property-crm/internal/store"

	"github.com/gofiber/fiber/v2"
)

func SetupAPIRoutes(router fiber.Router, deps Dependencies) {
	cfg := deps.Config
	s := deps.Store

	// SQL-backed parts are only wired when a database is present
	var (
		users    service.UserStore
		recorder service.ImportSessionRecorder
		lister   handler.SessionLister
		webhooks *repository.WebhookRepository
	)
	if deps.DB != nil {
		users = repository.NewUserRepository(deps.DB)
		sessions := repository.NewImportSessionRepository(deps.DB)
		recorder, lister = sessions, sessions
		webhooks = repository.NewWebhookRepository(deps.DB)
	}

	authService := service.NewAuthService(users, cfg)
	rentService := service.NewRentService(s, deps.Events)
	importService := service.NewImportService(s, recorder, cfg.ExportPath, deps.Logger)
	analyticsService := service.NewAnalyticsService(s, cfg.BillingAPIURL, cfg.BillingTimeout, deps.Logger)

	importHandler := handler.NewImportHandler(importService, lister, cfg)
	authHandler := handler.NewAuthHandler(authService)
	crmHandler := handler.NewCRMHandler(s, rentService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	// Collection routes. Action routes are registered before the generic
	// /:id routes so they are not shadowed.
	protected.Get("/properties/export", crmHandler.ExportProperties)
	protected.Post("/tenants/:id/move-out", crmHandler.MoveOutTenant)
	protected.Post("/payments/:id/pay", crmHandler.RecordPayment)

	handler.NewCollectionHandler(s, store.Properties, "Property", func(p *models.Property) []string {
		return []string{p.Name, p.Address, p.City}
	}).Register(protected.Group("/properties"))
	handler.NewCollectionHandler(s, store.Tenants, "Tenant", func(t *models.Tenant) []string {
		return []string{t.Name, t.Email, t.Phone}
	}).Register(protected.Group("/tenants"))
	handler.NewCollectionHandler(s, store.Managers, "Manager", func(m *models.PropertyManager) []string {
		return []string{m.Name, m.Email, m.Company}
	}).Register(protected.Group("/managers"))
	handler.NewCollectionHandler(s, store.Contacts, "Contact", func(c *models.Contact) []string {
		return []string{c.Name, c.Email, c.Company}
	}).Register(protected.Group("/contacts"))
	handler.NewCollectionHandler(s, store.Deals, "Deal", func(d *models.Deal) []string {
		return []string{d.Title}
	}).Register(protected.Group("/deals"))
	handler.NewCollectionHandler(s, store.Quotes, "Quote", nil).Register(protected.Group("/quotes"))
	handler.NewCollectionHandler(s, store.Campaigns, "Campaign", func(c *models.Campaign) []string {
		return []string{c.Name}
	}).Register(protected.Group("/campaigns"))
	handler.NewCollectionHandler(s, store.Groups, "Group", func(g *models.Group) []string {
		return []string{g.Name}
	}).Register(protected.Group("/groups"))
	handler.NewCollectionHandler(s, store.WorkOrders, "Work order", func(w *models.WorkOrder) []string {
		return []string{w.Title, w.Description}
	}).Register(protected.Group("/work-orders"))
	handler.NewCollectionHandler(s, store.Notes, "Note", func(n *models.Note) []string {
		return []string{n.Content}
	}).Register(protected.Group("/notes"))
	handler.NewCollectionHandler(s, store.Announcements, "Announcement", func(a *models.Announcement) []string {
		return []string{a.Title}
	}).Register(protected.Group("/announcements"))
	handler.NewCollectionHandler(s, store.Documents, "Document", func(d *models.Document) []string {
		return []string{d.Name}
	}).Register(protected.Group("/documents"))
	handler.NewCollectionHandler(s, store.Payments, "Payment", nil).Register(protected.Group("/payments"))

	// Import routes
	imports := protected.Group("/imports")
	imports.Get("/sessions", importHandler.GetSessions)
	imports.Get("/error-report/:filename", importHandler.DownloadErrorReport)
	imports.Get("/:entity/template", importHandler.DownloadTemplate)
	imports.Post("/:entity", importHandler.Import)

	// Settings
	settings := protected.Group("/settings")
	settings.Get("/late-fee", crmHandler.GetLateFeeSettings)
	settings.Put("/late-fee", middleware.AdminOnly(), crmHandler.UpdateLateFeeSettings)

	protected.Get("/analytics/dashboard", analyticsHandler.Dashboard)

	// Webhook subscriptions live in MySQL
	if webhooks != nil {
		webhookHandler := handler.NewWebhookHandler(webhooks)
		hooks := protected.Group("/webhooks")
		hooks.Get("/", webhookHandler.List)
		hooks.Get("/:id", webhookHandler.Get)
		hooks.Post("/", webhookHandler.Create)
		hooks.Put("/:id", webhookHandler.Update)
		hooks.Delete("/:id", webhookHandler.Delete)
	}
}

func setupBillingRoutes(router fiber.Router, deps Dependencies) {
	var billing handler.BillingSource
	if deps.DB != nil {
		billing = repository.NewBillingRepository(deps.DB)
	}
	billingHandler := handler.NewBillingHandler(deps.Store, billing, deps.Logger)

	router.Get("/payments", billingHandler.Payments)
	router.Get("/subscriptions", billingHandler.Subscriptions)
	router.Get("/subscription-plans", billingHandler.Plans)
}
