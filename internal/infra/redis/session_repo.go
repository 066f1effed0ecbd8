package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
)

var _ repository.BatchSessionRepository = (*SessionRepo)(nil)

// SessionRepo holds in-progress custom-batch sessions in Redis. Sessions are
// ephemeral; an abandoned one simply expires after the TTL.
type SessionRepo struct {
	client *redClient
	ttl    time.Duration
}

func NewSessionRepo(client *redClient, ttl time.Duration) *SessionRepo {
	return &SessionRepo{client: client, ttl: ttl}
}

func (s *SessionRepo) sessionKey(adminID int64) string {
	return fmt.Sprintf("batch_session:%d", adminID)
}

func (s *SessionRepo) Put(ctx context.Context, sess *model.BatchSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(sess.AdminID), data, s.ttl)
}

func (s *SessionRepo) Get(ctx context.Context, adminID int64) (*model.BatchSession, error) {
	data, err := s.client.Get(ctx, s.sessionKey(adminID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, err
	}
	var sess model.BatchSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionRepo) Delete(ctx context.Context, adminID int64) error {
	return s.client.Del(ctx, s.sessionKey(adminID))
}
