// Package redis implements the snapshot repository on a Redis instance.
// Every slot is one JSON document under a fixed key, rewritten wholesale,
// which keeps the last-writer-wins semantics of the merge pipeline
// observable in the store itself.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docmanage/opd-api/internal/model"
)

const (
	keyPatients    = "docmanage:patients"
	keyCurrentUser = "docmanage:current_user"
	keyCredentials = "docmanage:credentials"
)

type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
}

type SnapshotStore struct {
	client *redis.Client
}

func NewSnapshotStore(cfg Config) (*SnapshotStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SnapshotStore{client: client}, nil
}

// NewSnapshotStoreWithClient wires an existing client, used by tests.
func NewSnapshotStoreWithClient(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

func (s *SnapshotStore) LoadPatients(ctx context.Context) ([]model.Patient, error) {
	var patients []model.Patient
	if err := s.load(ctx, keyPatients, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (s *SnapshotStore) SavePatients(ctx context.Context, patients []model.Patient) error {
	return s.save(ctx, keyPatients, patients)
}

func (s *SnapshotStore) LoadCurrentUser(ctx context.Context) (*model.AuthUser, error) {
	var user model.AuthUser
	err := s.load(ctx, keyCurrentUser, &user)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

func (s *SnapshotStore) SaveCurrentUser(ctx context.Context, user *model.AuthUser) error {
	return s.save(ctx, keyCurrentUser, user)
}

func (s *SnapshotStore) ClearCurrentUser(ctx context.Context) error {
	if err := s.client.Del(ctx, keyCurrentUser).Err(); err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	return nil
}

func (s *SnapshotStore) LoadCredentials(ctx context.Context) ([]model.Credential, error) {
	var creds []model.Credential
	if err := s.load(ctx, keyCredentials, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (s *SnapshotStore) SaveCredentials(ctx context.Context, creds []model.Credential) error {
	return s.save(ctx, keyCredentials, creds)
}

func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

// load unmarshals the slot into dst; a missing slot leaves dst zeroed.
func (s *SnapshotStore) load(ctx context.Context, key string, dst interface{}) error {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *SnapshotStore) save(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
