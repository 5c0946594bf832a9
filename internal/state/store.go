package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/nao1215/corpuscrawl/internal/database"
)

// Store persists the latest snapshot.
type Store interface {
	// Save replaces the stored checkpoint.
	Save(ctx context.Context, snap *Snapshot) error
	// Load returns the stored checkpoint, or ErrNoCheckpoint.
	Load(ctx context.Context) (*Snapshot, error)
	// Clear removes the stored checkpoint. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// FileStore keeps the checkpoint in a JSON file. Saves are atomic: the
// file is either the previous checkpoint or the new one.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the checkpoint file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes snap to a temporary file in the same directory, syncs it
// and renames it over the checkpoint.
func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint file.
func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return Decode(data)
}

// Clear deletes the checkpoint file.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}

// DBStore keeps the checkpoint in the SQLite index database.
type DBStore struct {
	db *database.CrawlDB
}

var _ Store = (*DBStore)(nil)

// NewDBStore returns a store backed by db. The caller owns db.
func NewDBStore(db *database.CrawlDB) *DBStore {
	return &DBStore{db: db}
}

// Save stores snap in the checkpoint table.
func (s *DBStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return s.db.SaveCheckpoint(ctx, data)
}

// Load reads the checkpoint table.
func (s *DBStore) Load(ctx context.Context) (*Snapshot, error) {
	data, _, err := s.db.LoadCheckpoint(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoCheckpoint
	}
	return Decode(data)
}

// Clear empties the checkpoint table.
func (s *DBStore) Clear(ctx context.Context) error {
	return s.db.ClearCheckpoint(ctx)
}

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "corpuscrawl:checkpoint"

// RedisStore keeps the checkpoint under a single Redis key.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a store using client. An empty key selects
// DefaultRedisKey.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Save writes snap to the key.
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failure: %w", err)
	}
	return nil
}

// Load reads the key.
func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failure: %w", err)
	}
	return Decode(data)
}

// Clear deletes the key.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del failure: %w", err)
	}
	return nil
}
