package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/palmmap/palmmap/internal/config"
	"github.com/palmmap/palmmap/internal/handlers"
	"github.com/palmmap/palmmap/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	uploadsDir string,
	authHandler *handlers.AuthHandler,
	placeHandler *handlers.PlaceHandler,
	reviewHandler *handlers.ReviewHandler,
	profileHandler *handlers.ProfileHandler,
	adminHandler *handlers.AdminHandler,
	integrationHandler *handlers.IntegrationHandler,
) {
	// Review photos are served directly from the uploads directory.
	app.Static("/uploads/reviews", uploadsDir)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", handlers.Health)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/vk", authHandler.VKSignIn)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Places: reads are public, creation accepts anonymous submissions too.
	api.Get("/places", placeHandler.List)
	api.Get("/places/:id", placeHandler.Get)
	api.Post("/places", middleware.JWTOptional(cfg), placeHandler.Create)

	// Reviews
	api.Get("/reviews/place/:placeId", middleware.JWTOptional(cfg), reviewHandler.PlaceReviews)
	api.Get("/reviews/criteria/:placeType", reviewHandler.Criteria)
	api.Get("/reviews", middleware.JWTProtected(cfg), reviewHandler.MyReviews)
	api.Get("/reviews/check/:placeId", middleware.JWTProtected(cfg), reviewHandler.HasReview)
	api.Post("/reviews", middleware.JWTProtected(cfg), reviewHandler.Create)
	api.Put("/reviews/:id", middleware.JWTProtected(cfg), reviewHandler.Update)
	api.Delete("/reviews/:id", middleware.JWTProtected(cfg), reviewHandler.Delete)
	api.Post("/reviews/:id/vote", middleware.JWTProtected(cfg), reviewHandler.Vote)
	api.Post("/reviews/:id/photo", middleware.JWTProtected(cfg), reviewHandler.UploadPhoto)

	// Profile
	api.Get("/profile", middleware.JWTProtected(cfg), profileHandler.Profile)
	api.Get("/profile/ratings", middleware.JWTProtected(cfg), profileHandler.Ratings)

	// Admin moderation panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db))
	admin.Get("/reviews", adminHandler.ListReviews)
	admin.Post("/reviews/:id/moderate", adminHandler.Moderate)
	admin.Post("/reviews/approve-all", adminHandler.ApproveAll)
	admin.Delete("/reviews/:id", adminHandler.DeleteReview)
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Post("/users/:id/make-admin", adminHandler.MakeAdmin)
	admin.Post("/users/:id/remove-admin", adminHandler.RemoveAdmin)

	// Integration export API for city systems (X-Api-Key header).
	// The nearby route registers before the :id routes so "nearby" never
	// parses as a place id.
	integration := api.Group("/integration", middleware.APIKeyRequired(cfg))
	integration.Get("/places/nearby", integrationHandler.Nearby)
	integration.Get("/places", integrationHandler.Places)
	integration.Get("/places/:id", integrationHandler.Place)
	integration.Get("/places/:id/reviews", integrationHandler.PlaceReviews)
	integration.Get("/stats", integrationHandler.Stats)
	integration.Get("/export/geojson", integrationHandler.GeoJSON)
}
