package server

import (
	"backend-runlog/internal/activity"
	"backend-runlog/internal/auth"
	"backend-runlog/internal/cache"
	"backend-runlog/internal/config"
	"backend-runlog/internal/dashboard"
	"backend-runlog/internal/race"
	"backend-runlog/internal/shared/localtime"
	"backend-runlog/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Cache *cache.Cache
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		// TCX exports and race photos exceed fiber's 4MB default.
		BodyLimit: 20 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
		Cache: cache.New(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	norm := localtime.New(s.Cfg.DisplayTZ)

	activitySvc := activity.NewService(s.DB)
	imageSvc := storage.NewService(s.DB, s.Cfg.UploadDir)
	raceSvc := race.NewService(s.DB, activitySvc, imageSvc)
	dashboardSvc := dashboard.NewService(s.DB, norm)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	activity.RegisterRoutes(s.App.Group("/activities"), activitySvc, s.Cache, norm, jwtMiddleware)
	race.RegisterRoutes(s.App.Group("/races"), raceSvc, imageSvc, s.Cache, jwtMiddleware)
	dashboard.RegisterRoutes(s.App.Group("/dashboard"), dashboardSvc, s.Cache, jwtMiddleware)
}
