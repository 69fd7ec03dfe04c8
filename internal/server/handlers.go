package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"mines/internal/game"
)

type minesAction string

const (
	actionStart          minesAction = "start"
	actionReveal         minesAction = "reveal"
	actionCashout        minesAction = "cashout"
	actionGetMultipliers minesAction = "getMultipliers"
)

type minesActionRequest struct {
	Action    minesAction `json:"action"`
	Bet       *float64    `json:"bet"`
	MineCount *int        `json:"mineCount"`
	GameID    string      `json:"gameId"`
	CellIndex *int        `json:"cellIndex"`
}

// Health handler

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	health := fiber.Map{
		"database": s.db.Health(),
		"cache":    s.cache.Health(),
		"game": fiber.Map{
			"status":            "running",
			"connected_clients": s.hub.GetClientCount(),
		},
	}
	return c.JSON(health)
}

// Session handler (admin/testing; production tokens come from the
// identity provider in front of this service)

func (s *FiberServer) createSessionHandler(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "User ID is required",
		})
	}

	token, err := s.auth.Mint(c.Context(), body.UserID)
	if err != nil {
		log.Printf("[AUTH] Failed to mint session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create session",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user_id": body.UserID,
		"token":   token,
	})
}

// Mines game handler: single endpoint, action discriminator.

func (s *FiberServer) minesActionHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var req minesActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	switch req.Action {
	case actionStart:
		return s.handleStart(c, userID, req)
	case actionReveal:
		return s.handleReveal(c, userID, req)
	case actionCashout:
		return s.handleCashout(c, userID, req)
	case actionGetMultipliers:
		return s.handleGetMultipliers(c, req)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown action",
		})
	}
}

func (s *FiberServer) handleStart(c *fiber.Ctx, userID string, req minesActionRequest) error {
	if req.Bet == nil || req.MineCount == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Bet and mine count are required",
		})
	}

	res, err := s.engine.Start(c.Context(), userID, *req.Bet, *req.MineCount)
	if err != nil {
		return s.errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"game":    res.Game,
	})
}

func (s *FiberServer) handleReveal(c *fiber.Ctx, userID string, req minesActionRequest) error {
	if req.GameID == "" || req.CellIndex == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Game ID and cell index are required",
		})
	}

	res, err := s.engine.Reveal(c.Context(), userID, req.GameID, *req.CellIndex)
	if err != nil {
		return s.errorJSON(c, err)
	}

	switch {
	case res.Result == "mine":
		return c.JSON(fiber.Map{
			"success":       true,
			"result":        "mine",
			"gameOver":      true,
			"won":           false,
			"minePositions": res.MinePositions,
			"revealedCells": res.RevealedCells,
		})
	case res.GameOver:
		return c.JSON(fiber.Map{
			"success":            true,
			"result":             "safe",
			"gameOver":           true,
			"won":                true,
			"jackpot":            true,
			"multiplier":         res.Multiplier,
			"profit":             res.Profit,
			"minePositions":      res.MinePositions,
			"revealedCells":      res.RevealedCells,
			"safeCellsRemaining": 0,
		})
	default:
		return c.JSON(fiber.Map{
			"success":            true,
			"result":             "safe",
			"gameOver":           false,
			"multiplier":         res.Multiplier,
			"nextMultiplier":     res.NextMultiplier,
			"profit":             res.Profit,
			"revealedCells":      res.RevealedCells,
			"safeCellsRemaining": res.SafeCellsRemaining,
		})
	}
}

func (s *FiberServer) handleCashout(c *fiber.Ctx, userID string, req minesActionRequest) error {
	if req.GameID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Game ID is required",
		})
	}

	res, err := s.engine.Cashout(c.Context(), userID, req.GameID)
	if err != nil {
		return s.errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"won":           true,
		"profit":        res.Profit,
		"multiplier":    res.Multiplier,
		"minePositions": res.MinePositions,
		"revealedCells": res.RevealedCells,
	})
}

func (s *FiberServer) handleGetMultipliers(c *fiber.Ctx, req minesActionRequest) error {
	if req.MineCount == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Mine count is required",
		})
	}

	table, err := game.MultiplierTable(*req.MineCount)
	if err != nil {
		return s.errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"multiplierTable": table,
		"houseEdge":       game.HouseEdgeLabel(),
	})
}

func errorStatus(err error) int {
	switch game.KindOf(err) {
	case game.KindInvalidParameter, game.KindInvalidOperation:
		return fiber.StatusBadRequest
	case game.KindUnauthorized:
		return fiber.StatusUnauthorized
	case game.KindNotFound:
		return fiber.StatusNotFound
	case game.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *FiberServer) errorJSON(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("[SERVER] Internal error: %v", err)
	}

	body := fiber.Map{
		"success": false,
		"error":   err.Error(),
	}
	if gameID := game.ConflictGameID(err); gameID != "" {
		// Let the client resume the game already in progress.
		body["gameId"] = gameID
	}
	return c.Status(status).JSON(body)
}

// WebSocket handler

func (s *FiberServer) gameWebSocketHandler(conn *websocket.Conn) {
	token := conn.Query("token")

	userID, err := s.auth.Resolve(context.Background(), token)
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"type": "error", "error": "Invalid or missing credentials"})
		conn.WriteMessage(websocket.TextMessage, errJSON)
		conn.Close()
		return
	}

	log.Printf("[WS] New connection from user: %s", userID)

	s.hub.RegisterClient(conn, userID)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[WS] Read error for user %s: %v", userID, err)
			s.hub.UnregisterClient(conn)
			break
		}

		if messageType == websocket.TextMessage {
			var clientMsg map[string]interface{}
			if err := json.Unmarshal(message, &clientMsg); err != nil {
				continue
			}

			if msgType, ok := clientMsg["type"].(string); ok && msgType == "ping" {
				pongJSON, _ := json.Marshal(map[string]string{"type": "pong"})
				conn.WriteMessage(websocket.TextMessage, pongJSON)
			}
		}
	}
}
