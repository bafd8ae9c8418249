package routes

import (
	"assetdesk/internal/adapters/http/handlers"
	"assetdesk/internal/adapters/http/middleware"
	"assetdesk/internal/adapters/persistence/repositories"
	"assetdesk/internal/config"
	"assetdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	borrowRepo := repositories.NewBorrowRequestRepository(db)
	txRunner := repositories.NewBorrowTxRunner(db)
	manufacturerRepo := repositories.NewManufacturerRepository(db)
	locationRepo := repositories.NewLocationRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	itemService := services.NewItemService(itemRepo, borrowRepo)
	borrowService := services.NewBorrowService(itemRepo, borrowRepo, txRunner)
	analyticsService := services.NewAnalyticsService(db)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	itemHandler := handlers.NewItemHandler(itemService)
	borrowHandler := handlers.NewBorrowHandler(borrowService)
	masterHandler := handlers.NewMasterHandler(manufacturerRepo, locationRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Item catalog routes
	itemRoutes := apiV1.Group("/items")
	setupItemRoutes(itemRoutes, itemHandler, cfg)

	// Borrow lifecycle routes
	borrowRoutes := apiV1.Group("/borrow")
	setupBorrowRoutes(borrowRoutes, borrowHandler, cfg)

	// Master data routes
	setupMasterRoutes(apiV1, masterHandler, cfg)

	// Analytics routes (Admin only)
	analyticsRoutes := apiV1.Group("/analytics")
	analyticsRoutes.Use(middleware.AuthMiddleware(cfg))
	analyticsRoutes.Use(middleware.AdminOnly())
	analyticsRoutes.Get("/items", analyticsHandler.ItemsPerRange)
	analyticsRoutes.Get("/users", analyticsHandler.UserStats)
	analyticsRoutes.Get("/top-borrowers", analyticsHandler.TopBorrowers)

	// User management routes (Admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	userRoutes.Get("/", userHandler.List)
	userRoutes.Patch("/:id", userHandler.Update)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited against brute force
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupItemRoutes configures item catalog routes
func setupItemRoutes(router fiber.Router, handler *handlers.ItemHandler, cfg *config.Config) {
	// Reading the catalog requires login only
	router.Get("/", middleware.AuthMiddleware(cfg), handler.List)
	router.Get("/:id", middleware.AuthMiddleware(cfg), handler.Get)

	// Mutations are admin only
	router.Post("/", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Create)
	router.Put("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Delete)
}

// setupBorrowRoutes configures borrow lifecycle routes
func setupBorrowRoutes(router fiber.Router, handler *handlers.BorrowHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))

	// Catalog with borrower identity attached
	router.Get("/items", handler.ListAvailableItems)

	// Requester side
	router.Post("/requests", handler.CreateRequest)
	router.Get("/my-requests", handler.ListMyRequests)
	router.Patch("/requests/:id/request-return", handler.RequestReturn)
	router.Delete("/requests/:id", handler.CancelRequest)

	// Admin side
	router.Get("/requests", middleware.AdminOnly(), handler.ListAllRequests)
	router.Patch("/requests/:id/action", middleware.AdminOnly(), handler.DecideRequest)
	router.Patch("/requests/:id/return", middleware.AdminOnly(), handler.ConfirmReturn)
	router.Patch("/requests/:id/return/reject", middleware.AdminOnly(), handler.RejectReturn)
}

// setupMasterRoutes configures manufacturer and location master routes
func setupMasterRoutes(router fiber.Router, handler *handlers.MasterHandler, cfg *config.Config) {
	manufacturers := router.Group("/manufacturers")
	manufacturers.Use(middleware.AuthMiddleware(cfg))
	manufacturers.Get("/", handler.ListManufacturers)
	manufacturers.Post("/", middleware.AdminOnly(), handler.CreateManufacturer)
	manufacturers.Put("/:id", middleware.AdminOnly(), handler.UpdateManufacturer)
	manufacturers.Delete("/:id", middleware.AdminOnly(), handler.DeleteManufacturer)

	locations := router.Group("/locations")
	locations.Use(middleware.AuthMiddleware(cfg))
	locations.Get("/", handler.ListLocations)
	locations.Post("/", middleware.AdminOnly(), handler.CreateLocation)
	locations.Put("/:id", middleware.AdminOnly(), handler.UpdateLocation)
	locations.Delete("/:id", middleware.AdminOnly(), handler.DeleteLocation)
}
