package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"frontdesk/models"

	"github.com/go-redis/redis/v8"
)

// ErrSessionCorrupt signals malformed persisted state. The orchestrator
// recovers by reinitializing the session, never by guessing.
var ErrSessionCorrupt = errors.New("session state corrupt")

// SessionStore is the durable per-session state store. Save is a full-state
// upsert; the merge policy lives in the orchestrator, not here.
type SessionStore interface {
	// Load returns nil, nil when no session exists under the id.
	Load(ctx context.Context, sessionID string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
}

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions as JSON under a TTL. The TTL is the
// retention policy; an expired session reads as new.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore builds the Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	if session.ID == "" || session.TenantID == "" {
		return nil, fmt.Errorf("%w: missing identifiers", ErrSessionCorrupt)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return nil
}
