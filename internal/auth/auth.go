package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 24 * time.Hour
)

// ErrUnauthorized is returned when a bearer token resolves to no session.
var ErrUnauthorized = errors.New("invalid or expired session")

// Service resolves bearer tokens to user ids. The game engine never sees
// tokens, only the resolved id.
type Service interface {
	Resolve(ctx context.Context, token string) (string, error)
	Mint(ctx context.Context, userID string) (string, error)
}

type redisService struct {
	client *redis.Client
}

func NewRedisService(client *redis.Client) Service {
	return &redisService{client: client}
}

func (s *redisService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}
	return userID, nil
}

// Mint issues a fresh bearer token for the user.
func (s *redisService) Mint(ctx context.Context, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token generation: %w", err)
	}
	token := hex.EncodeToString(b)

	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	log.Printf("[AUTH] Session minted for user %s", userID)
	return token, nil
}
