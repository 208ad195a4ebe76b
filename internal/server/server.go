package server

import (
	"strings"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the resources the application is assembled from. Cache and
// Publisher are optional.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Cache     services.PageCache
	Publisher services.EventPublisher
	// HashCost overrides the bcrypt cost when non-zero.
	HashCost int
	// AccessLog enables the per-request access log.
	AccessLog bool
}

// App is the assembled HTTP application.
type App struct {
	*fiber.App
	AuthService     *services.AuthService
	ProductService  *services.ProductService
	FavoriteService *services.FavoriteService
}

// New wires repositories, services and handlers into a Fiber app.
func New(deps Deps) (*App, error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	productRepo := repositories.NewGORMProductRepository(deps.DB)
	favoriteRepo := repositories.NewGORMFavoriteRepository(deps.DB)

	// --- Services ---
	sessions := services.NewSessionIssuer(cfg.JWTSecret, cfg.JWTExpire)
	authService := services.NewAuthService(userRepo, favoriteRepo, sessions, log)
	if deps.HashCost != 0 {
		authService.SetHashCost(deps.HashCost)
	}
	productService := services.NewProductService(productRepo, deps.Cache, deps.Publisher, log)
	authService.SetListingInvalidator(productService)
	favoriteService := services.NewFavoriteService(favoriteRepo, productRepo, deps.Publisher, log)

	images, err := handlers.NewImageStore(cfg.UploadDir, cfg.MaxUploadMB)
	if err != nil {
		return nil, err
	}

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "marketplace",
		ErrorHandler: handlers.ErrorHandler(log, !cfg.IsProduction()),
		BodyLimit:    (cfg.MaxUploadMB + 1) << 20,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(fiberlogger.New())
	}
	corsConfig := cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}
	if origins := cfg.Origins(); len(origins) > 0 {
		corsConfig.AllowOrigins = strings.Join(origins, ",")
		corsConfig.AllowCredentials = true
	}
	app.Use(cors.New(corsConfig))

	guards := handlers.Guards{
		Required: middleware.AuthRequired(authService),
		Optional: middleware.OptionalAuth(authService),
		Admin:    middleware.AdminRequired(),
	}

	var authLimiter fiber.Handler
	if cfg.AuthRateLimit > 0 {
		authLimiter = limiter.New(limiter.Config{
			Max:        cfg.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
			},
		})
	}

	// --- Routes ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "OK",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	handlers.NewAuthHandler(authService).RegisterRoutes(app, guards, authLimiter)
	handlers.NewProductHandler(productService, favoriteService, images).RegisterRoutes(app, guards)
	handlers.NewFavoriteHandler(favoriteService).RegisterRoutes(app, guards)

	app.Static(handlers.UploadsPath, images.Dir())
	app.Use(handlers.NotFound)

	return &App{
		App:             app,
		AuthService:     authService,
		ProductService:  productService,
		FavoriteService: favoriteService,
	}, nil
}
