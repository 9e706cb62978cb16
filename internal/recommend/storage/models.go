// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/recommend"
)

const modelKeyPrefix = "model:"

// Errors
var (
	// ErrModelNotFound is returned when no model is stored under a key.
	ErrModelNotFound = errors.New("model not found")

	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("model store is closed")

	// ErrChecksumMismatch is returned when a stored model fails verification.
	ErrChecksumMismatch = errors.New("model checksum mismatch")

	// ErrEmptyKey is returned for an empty model key.
	ErrEmptyKey = errors.New("model key cannot be empty")
)

// Config holds model store settings.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps the store in memory only.
	InMemory bool `koanf:"in_memory"`

	// TTL expires stored models. Zero keeps them forever.
	TTL time.Duration `koanf:"ttl"`

	// GCRatio is the value-log discard ratio passed to RunValueLogGC.
	GCRatio float64 `koanf:"gc_ratio"`

	// SyncWrites fsyncs every write.
	SyncWrites bool `koanf:"sync_writes"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:    "/data/models",
		TTL:     7 * 24 * time.Hour,
		GCRatio: 0.5,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	if c.TTL < 0 {
		return fmt.Errorf("store.ttl must not be negative, got %s", c.TTL)
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return fmt.Errorf("store.gc_ratio must be in (0, 1), got %g", c.GCRatio)
	}
	return nil
}

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Key is the model cache key.
	Key string `json:"key"`

	// Algorithm is the trainer name (e.g., "svd").
	Algorithm string `json:"algorithm"`

	// Entries is the number of ratings the model was trained on.
	Entries int `json:"entries"`

	// UserCount is the number of users with factors.
	UserCount int `json:"user_count"`

	// ItemCount is the number of items with factors.
	ItemCount int `json:"item_count"`

	// Factors is the latent dimension.
	Factors int `json:"factors"`

	// Epochs is the number of epochs run.
	Epochs int `json:"epochs"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// ExpiresAt is when the entry expires. Zero means never.
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// storedModel is the on-disk value format.
type storedModel struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// ModelStore persists trained models in BadgerDB.
// It implements recommend.ModelCache.
type ModelStore struct {
	db     *badger.DB
	config Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) a model store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*ModelStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model store config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &ModelStore{
		db:     db,
		config: cfg,
		logger: logger.With().Str("component", "model-store").Logger(),
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("ttl", cfg.TTL).
		Msg("model store opened")
	return s, nil
}

// Name identifies the tier.
func (s *ModelStore) Name() string { return "badger" }

// Get implements recommend.ModelCache. A missing key is (nil, nil).
func (s *ModelStore) Get(ctx context.Context, key string) (*recommend.FactorModel, error) {
	model, _, err := s.Load(ctx, key)
	if errors.Is(err, ErrModelNotFound) {
		return nil, nil
	}
	return model, err
}

// Put implements recommend.ModelCache.
func (s *ModelStore) Put(ctx context.Context, key string, model *recommend.FactorModel) error {
	_, err := s.Save(ctx, key, model)
	return err
}

// Save stores a model under key, replacing any previous value.
func (s *ModelStore) Save(ctx context.Context, key string, model *recommend.FactorModel) (*ModelMetadata, error) {
	if err := s.checkOpen(ctx, key); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("save model %s: model is nil", key)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(model); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()
	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	now := time.Now()
	meta := ModelMetadata{
		Key:                key,
		Algorithm:          model.Algorithm,
		Entries:            model.Entries,
		UserCount:          model.NumUsers(),
		ItemCount:          model.NumItems(),
		Factors:            model.Factors,
		Epochs:             model.Epochs,
		TrainedAt:          model.TrainedAt,
		SavedAt:            now,
		TrainingDurationMS: model.TrainDuration.Milliseconds(),
		Checksum:           hex.EncodeToString(hash[:]),
		SizeBytes:          int64(compressed.Len()),
	}
	if s.config.TTL > 0 {
		meta.ExpiresAt = now.Add(s.config.TTL)
	}

	var value bytes.Buffer
	if err := gob.NewEncoder(&value).Encode(storedModel{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return nil, fmt.Errorf("encode stored model: %w", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(modelKeyPrefix+key), value.Bytes())
		if s.config.TTL > 0 {
			e = e.WithTTL(s.config.TTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return nil, fmt.Errorf("write model %s: %w", key, err)
	}

	s.logger.Debug().
		Str("model_key", key).
		Int64("size_bytes", meta.SizeBytes).
		Msg("model saved")
	return &meta, nil
}

// Load reads and verifies the model stored under key.
func (s *ModelStore) Load(ctx context.Context, key string) (*recommend.FactorModel, *ModelMetadata, error) {
	if err := s.checkOpen(ctx, key); err != nil {
		return nil, nil, err
	}

	var sm storedModel
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(modelKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrModelNotFound
		}
		if err != nil {
			return fmt.Errorf("get model: %w", err)
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&sm)
		})
	})
	if err != nil {
		return nil, nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sm.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sm.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sm.Metadata.Checksum, checksum)
	}

	var model recommend.FactorModel
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&model); err != nil {
		return nil, nil, fmt.Errorf("decode model: %w", err)
	}
	return &model, &sm.Metadata, nil
}

// List returns metadata for all live models.
func (s *ModelStore) List(ctx context.Context) ([]ModelMetadata, error) {
	if err := s.checkOpen(ctx, "-"); err != nil {
		return nil, err
	}

	var models []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(modelKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var sm storedModel
			err := it.Item().Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&sm)
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("skipping unreadable model")
				continue
			}
			models = append(models, sm.Metadata)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// Delete removes the model stored under key. Deleting a missing key is not an error.
func (s *ModelStore) Delete(ctx context.Context, key string) error {
	if err := s.checkOpen(ctx, key); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(modelKeyPrefix + key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete model: %w", err)
		}
		return nil
	})
}

// RunGC reclaims value-log space until nothing more can be rewritten.
// It is a no-op for in-memory stores.
func (s *ModelStore) RunGC() error {
	if err := s.checkOpen(context.Background(), "-"); err != nil {
		return err
	}
	if s.config.InMemory {
		return nil
	}

	for {
		err := s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the underlying database. It is safe to call more than once.
func (s *ModelStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	s.logger.Info().Msg("model store closed")
	return nil
}

func (s *ModelStore) checkOpen(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

var _ recommend.ModelCache = (*ModelStore)(nil)
