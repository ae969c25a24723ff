package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"go.uber.org/zap"
)

// recordAttempt stores a login outcome for the history endpoint.
// Failures are logged and never surface to the caller.
func (s *Service) recordAttempt(ctx context.Context, accountID *uuid.UUID, method, status, reason, ip, userAgent string) {
	if s.loginAttempts == nil {
		return
	}
	if err := s.loginAttempts.Insert(ctx, domain.LoginAttempt{
		AccountID:     accountID,
		AttemptedAt:   s.nowFn(),
		Method:        method,
		Status:        status,
		FailureReason: reason,
		IPAddress:     ip,
		UserAgent:     truncateRunes(userAgent, 512),
	}); err != nil {
		logger().Warn("failed to persist login attempt",
			zap.String("operation", "record_login_attempt"),
			zap.String("outcome", "failure"),
			zap.String("method", method),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

func randomHex(bytesLen int) string {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()[:bytesLen*2]
	}
	return hex.EncodeToString(buf)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
