package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SaleLockService serializes confirmations for the same ticket. Two buyers
// racing the confirm endpoint must not both get past the status check, so
// the whole finalize sequence runs under a short-lived Redis lock.
type SaleLockService struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewSaleLockService(redisClient *redis.Client, ttl time.Duration) *SaleLockService {
	return &SaleLockService{Redis: redisClient, TTL: ttl}
}

func saleLockKey(ticketID string) string {
	return fmt.Sprintf("sale:lock:%s", ticketID)
}

// AcquireTicketLock returns false when another confirmation for the same
// ticket is already in flight.
func (s *SaleLockService) AcquireTicketLock(ctx context.Context, ticketID string) (bool, error) {
	ok, err := s.Redis.SetNX(ctx, saleLockKey(ticketID), 1, s.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sale lock: %w", err)
	}
	return ok, nil
}

// ReleaseTicketLock drops the lock early. The TTL covers the case where a
// crashed request never gets here.
func (s *SaleLockService) ReleaseTicketLock(ctx context.Context, ticketID string) {
	if err := s.Redis.Del(ctx, saleLockKey(ticketID)).Err(); err != nil {
		slog.Error("Failed to release sale lock", "ticket_id", ticketID, "error", err)
	}
}
