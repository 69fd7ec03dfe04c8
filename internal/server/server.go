package server

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"mines/internal/auth"
	"mines/internal/cache"
	"mines/internal/database"
	"mines/internal/game"
)

type FiberServer struct {
	*fiber.App

	db     database.Service
	cache  cache.Service
	auth   auth.Service
	engine *game.Engine
	hub    *game.Hub
}

func New() *FiberServer {
	// Initialize database
	db := database.New()

	// Initialize Redis for sessions
	redisService := cache.New()
	if redisService == nil {
		log.Fatal("[SERVER] Redis is required for session handling")
	}

	hub := game.NewHub()
	store := database.NewGameStore(db)
	engine := game.NewEngine(store, hub)
	authService := auth.NewRedisService(redisService.GetClient())

	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader:  "mines",
			AppName:       "mines",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
			IdleTimeout:   120 * time.Second,
			StrictRouting: false,
		}),

		db:     db,
		cache:  redisService,
		auth:   authService,
		engine: engine,
		hub:    hub,
	}

	// Apply global middleware
	server.App.Use(recover.New())
	server.App.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	go hub.Run()

	log.Println("[SERVER] Mines engine ready")

	return server
}

// Shutdown gracefully shuts down the server's connections.
func (s *FiberServer) Shutdown() error {
	log.Println("[SERVER] Shutting down...")

	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		s.db.Close()
	}

	return nil
}
