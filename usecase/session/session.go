package session

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/internal/metrics"
	"github.com/sorayamlj/FocusTache/pkg/logger"
	"github.com/sorayamlj/FocusTache/repository"
)

// UseCase records and lists a caller's focus sessions.
type UseCase struct {
	sessions repository.FocusSessionRepository
	logger   *zap.Logger
	now      func() time.Time
}

func New(sessions repository.FocusSessionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{sessions: sessions, logger: logger, now: time.Now}
}

// Record stores one finished focus run of the caller.
func (uc *UseCase) Record(ctx context.Context, caller domain.Caller, taskID string, elapsedSeconds float64) (*domain.FocusSession, error) {
	if !caller.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if elapsedSeconds < 0 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "session validation failed", &domain.ValidationError{
			Violations: []domain.Violation{{Field: "elapsed_seconds", Message: "must not be negative"}},
		})
	}

	session := &domain.FocusSession{
		Owner:          caller.Email,
		TaskID:         strings.TrimSpace(taskID),
		ElapsedSeconds: elapsedSeconds,
		CreatedAt:      uc.now(),
	}
	if err := uc.sessions.Record(ctx, session); err != nil {
		metrics.TaskOperations.WithLabelValues("record_session", "error").Inc()
		return nil, err
	}
	metrics.TaskOperations.WithLabelValues("record_session", "ok").Inc()
	logger.WithRequestID(ctx, uc.logger).Debug("focus session recorded",
		zap.String("session_id", session.ID),
		zap.Float64("elapsed_seconds", elapsedSeconds),
	)
	return session, nil
}

// List returns the caller's sessions since the given instant, newest first.
func (uc *UseCase) List(ctx context.Context, caller domain.Caller, since time.Time) ([]domain.FocusSession, error) {
	if !caller.Valid() {
		return nil, domain.ErrUnauthorized
	}
	sessions, err := uc.sessions.ListByOwner(ctx, caller.Email, since)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []domain.FocusSession{}
	}
	return sessions, nil
}
