package router

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/noah-isme/membership-portal-api/internal/config"
	"github.com/noah-isme/membership-portal-api/internal/handler"
	"github.com/noah-isme/membership-portal-api/internal/middleware"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler              *handler.AuthHandler
	UserHandler              *handler.UserHandler
	AdminUserHandler         *handler.AdminUserHandler
	AssociationHandler       *handler.AssociationHandler
	ExamHandler              *handler.ExamHandler
	AdminExamHandler         *handler.AdminExamHandler
	PaymentHandler           *handler.PaymentHandler
	AdminPaymentHandler      *handler.AdminPaymentHandler
	AnnouncementHandler      *handler.AnnouncementHandler
	AdminAnnouncementHandler *handler.AdminAnnouncementHandler
	GalleryHandler           *handler.GalleryHandler
	AdminGalleryHandler      *handler.AdminGalleryHandler
	BlogHandler              *handler.BlogHandler
	AdminBlogHandler         *handler.AdminBlogHandler
	HomepageHandler          *handler.HomepageHandler
	AdvertisementHandler     *handler.AdvertisementHandler
	UploadHandler            *handler.UploadHandler
	CampHandler              *handler.CampHandler
	AuditHandler             *handler.AuditHandler
	ExportHandler            *handler.ExportHandler
	DashboardHandler         *handler.DashboardHandler
	SeedHandler              *handler.SeedHandler
	// Uploads serves locally stored files under cfg.StoragePublicBase. Nil when files live in Cloudinary.
	Uploads       http.FileSystem
	JWTMiddleware fiber.Handler
	AuthLimiter   fiber.Handler
	HealthChecks  []handler.DependencyCheck
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	if deps.Uploads != nil && cfg.StoragePublicBase != "" {
		app.Use(cfg.StoragePublicBase, filesystem.New(filesystem.Config{
			Root:   deps.Uploads,
			MaxAge: int((24 * time.Hour).Seconds()),
		}))
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks...))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	authLimiter := deps.AuthLimiter
	if authLimiter == nil {
		authLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), authLimiter)
	}
	if deps.AssociationHandler != nil {
		deps.AssociationHandler.Register(api.Group("/associations"))
	}
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.Register(api.Group("/announcements"))
	}
	if deps.GalleryHandler != nil {
		deps.GalleryHandler.Register(api.Group("/gallery"))
	}
	if deps.BlogHandler != nil {
		deps.BlogHandler.Register(api.Group("/blog"))
	}
	if deps.HomepageHandler != nil {
		deps.HomepageHandler.Register(api.Group("/homepage"))
	}
	if deps.AdvertisementHandler != nil {
		deps.AdvertisementHandler.Register(api.Group("/ads"))
	}

	// Authenticated members
	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware))
	}
	if deps.ExamHandler != nil {
		deps.ExamHandler.Register(api.Group("/exams", jwtMiddleware))
	}
	if deps.PaymentHandler != nil {
		deps.PaymentHandler.Register(api.Group("/payments", jwtMiddleware))
	}
	if deps.CampHandler != nil {
		deps.CampHandler.Register(api.Group("/camps", jwtMiddleware))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwtMiddleware))
	}

	// Administration
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireAdmin())
	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
	if deps.AssociationHandler != nil {
		deps.AssociationHandler.RegisterAdmin(admin.Group("/associations"))
	}
	if deps.AdminExamHandler != nil {
		deps.AdminExamHandler.Register(admin.Group("/exams"))
		deps.AdminExamHandler.RegisterResults(admin.Group("/exam-results"))
	}
	if deps.AdminPaymentHandler != nil {
		deps.AdminPaymentHandler.Register(admin.Group("/payments"))
	}
	if deps.AdminAnnouncementHandler != nil {
		deps.AdminAnnouncementHandler.Register(admin.Group("/announcements"))
	}
	if deps.AdminGalleryHandler != nil {
		deps.AdminGalleryHandler.Register(admin.Group("/gallery"))
	}
	if deps.AdminBlogHandler != nil {
		deps.AdminBlogHandler.Register(admin.Group("/blog"))
	}
	if deps.HomepageHandler != nil {
		deps.HomepageHandler.RegisterAdmin(admin.Group("/homepage"))
	}
	if deps.AdvertisementHandler != nil {
		deps.AdvertisementHandler.RegisterAdmin(admin.Group("/ads"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(admin.Group("/media"))
	}
	if deps.CampHandler != nil {
		deps.CampHandler.RegisterAdmin(admin.Group("/camps"))
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(admin.Group("/audit-logs"))
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.Register(admin.Group("/exports"))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(admin.Group("/seed", middleware.RequireRole(models.RoleSuperadmin)))
	}
}
