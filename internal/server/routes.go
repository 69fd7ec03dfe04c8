package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func (s *FiberServer) RegisterFiberRoutes() {
	// Apply CORS middleware
	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Accept,Authorization,Content-Type",
		AllowCredentials: false, // credentials require explicit origins
		MaxAge:           300,
	}))

	s.App.Get("/health", s.healthHandler)

	api := s.App.Group("/api/v1")

	// Stand-in for the external identity provider.
	api.Post("/sessions", s.createSessionHandler)

	api.Post("/mines", s.requireUser, s.minesActionHandler)

	// WebSocket route for game result pushes
	s.App.Get("/ws", websocket.New(s.gameWebSocketHandler))
}

// requireUser resolves the bearer token and stashes the user id for the
// handler. Nothing past this middleware sees the token itself.
func (s *FiberServer) requireUser(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))

	userID, err := s.auth.Resolve(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid or missing credentials",
		})
	}

	c.Locals("userID", userID)
	return c.Next()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
