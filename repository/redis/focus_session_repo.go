package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/repository"
)

// focusSessionRepository keeps one sorted set per owner, scored by the
// session timestamp in milliseconds. Sessions are kept for good: the
// dashboard reports all-time totals.
type focusSessionRepository struct {
	client redislib.UniversalClient
	prefix string
	now    func() time.Time
}

// NewFocusSessionRepository creates a Redis-backed focus session store.
func NewFocusSessionRepository(client redislib.UniversalClient) repository.FocusSessionRepository {
	return &focusSessionRepository{
		client: client,
		prefix: "focus:sessions:",
		now:    time.Now,
	}
}

func (r *focusSessionRepository) ListByOwner(ctx context.Context, owner string, since time.Time) ([]domain.FocusSession, error) {
	lower := "-inf"
	if !since.IsZero() {
		lower = strconv.FormatInt(since.UnixMilli(), 10)
	}

	members, err := r.client.ZRevRangeByScore(ctx, r.key(owner), &redislib.ZRangeBy{
		Min: lower,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list focus sessions: %w", err)
	}

	sessions := make([]domain.FocusSession, 0, len(members))
	for _, member := range members {
		var session domain.FocusSession
		if err := json.Unmarshal([]byte(member), &session); err != nil {
			return nil, fmt.Errorf("decode focus session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *focusSessionRepository) Record(ctx context.Context, session *domain.FocusSession) error {
	if session == nil || session.Owner == "" || session.ElapsedSeconds < 0 {
		return domain.ErrInvalidPayload
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	err = r.client.ZAdd(ctx, r.key(session.Owner), redislib.Z{
		Score:  float64(session.Timestamp().UnixMilli()),
		Member: payload,
	}).Err()
	if err != nil {
		return fmt.Errorf("record focus session: %w", err)
	}
	return nil
}

func (r *focusSessionRepository) key(owner string) string {
	return fmt.Sprintf("%s%s", r.prefix, owner)
}
