package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cargo-tracker/internal/logger"
)

// StartTokenCleanupJob periodically deletes refresh tokens that expired more
// than a day ago. Blocks until ctx is cancelled.
func (s *Service) StartTokenCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Token cleanup job started",
		zap.Duration("interval", interval),
	)

	s.cleanupExpiredTokens(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token cleanup job stopped")
			return
		case <-ticker.C:
			s.cleanupExpiredTokens(ctx)
		}
	}
}

func (s *Service) cleanupExpiredTokens(ctx context.Context) {
	olderThan := 24 * time.Hour
	if err := s.refreshTokenRepo.DeleteExpired(ctx, olderThan); err != nil {
		logger.Error("Failed to delete expired tokens", zap.Error(err))
		return
	}

	logger.Debug("Expired tokens cleaned up",
		zap.Duration("older_than", olderThan),
	)
}
