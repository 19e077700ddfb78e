package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// persistedSession is the wire form stored in Redis. It deliberately has no
// fields for the API keys: credentials stay pinned in process memory and are
// re-attached on Get, so they never reach the broker or its persistence.
type persistedSession struct {
	ID                  uuid.UUID `json:"id"`
	CredentialsProvided bool      `json:"credentials_provided"`
	Ended               bool      `json:"ended"`
	History             []Message `json:"history"`
}

// credentialPin holds one session's keys in process memory. Pins expire on
// the same clock as the Redis entry they shadow, so keys never outlive the
// session they belong to.
type credentialPin struct {
	primary   string
	secondary string
	expiresAt time.Time
}

func (p credentialPin) expired(now time.Time) bool {
	return now.After(p.expiresAt)
}

// RedisStore keeps session history and flags in Redis under a TTL so a large
// number of idle sessions does not pin process memory.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.Mutex
	creds map[uuid.UUID]credentialPin
}

// NewRedisStore connects and pings the Redis instance.
func NewRedisStore(addr, password string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		creds:  make(map[uuid.UUID]credentialPin),
	}, nil
}

// persistSession strips a session down to its Redis wire form.
func persistSession(s *Session) persistedSession {
	return persistedSession{
		ID:                  s.ID,
		CredentialsProvided: s.CredentialsProvided,
		Ended:               s.Ended,
		History:             s.History,
	}
}

// restoreSession rebuilds a session from its wire form plus the in-process
// pin. A session whose pin is gone (expired, or the process restarted) is
// demoted behind the gate: keys cannot be recovered, so the user must
// re-enter them rather than have turns fired with an empty credential.
func restoreSession(p persistedSession, pin credentialPin, pinned bool) *Session {
	s := &Session{
		ID:                  p.ID,
		CredentialsProvided: p.CredentialsProvided,
		Ended:               p.Ended,
		History:             p.History,
	}
	if s.History == nil {
		s.History = []Message{}
	}
	if pinned {
		s.PrimaryKey = pin.primary
		s.SecondaryKey = pin.secondary
	} else {
		s.CredentialsProvided = false
	}
	return s
}

// sweepPins drops every expired pin. Caller holds r.mu.
func sweepPins(creds map[uuid.UUID]credentialPin, now time.Time) {
	for id, pin := range creds {
		if pin.expired(now) {
			delete(creds, id)
		}
	}
}

func (r *RedisStore) lookupPin(id uuid.UUID, now time.Time) (credentialPin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sweepPins(r.creds, now)
	pin, ok := r.creds[id]
	return pin, ok
}

func (r *RedisStore) Create(ctx context.Context) (*Session, error) {
	s := New()
	if err := r.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	pin, ok := r.lookupPin(id, time.Now())
	return restoreSession(p, pin, ok), nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(persistSession(s))
	if err != nil {
		return err
	}

	now := time.Now()
	r.mu.Lock()
	sweepPins(r.creds, now)
	if s.PrimaryKey != "" || s.SecondaryKey != "" {
		r.creds[s.ID] = credentialPin{
			primary:   s.PrimaryKey,
			secondary: s.SecondaryKey,
			expiresAt: now.Add(r.ttl),
		}
	}
	r.mu.Unlock()

	return r.client.Set(ctx, sessionKeyPrefix+s.ID.String(), data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	delete(r.creds, id)
	r.mu.Unlock()
	return r.client.Del(ctx, sessionKeyPrefix+id.String()).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
