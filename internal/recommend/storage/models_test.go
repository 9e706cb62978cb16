// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/recommend"
)

// openTestStore opens an in-memory store closed at test end.
func openTestStore(t *testing.T, ttl time.Duration) *ModelStore {
	t.Helper()

	cfg := DefaultConfig()
	cfg.InMemory = true
	cfg.TTL = ttl
	store, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testModel() *recommend.FactorModel {
	return &recommend.FactorModel{
		Algorithm:     "svd",
		GlobalBias:    3,
		UserIndex:     map[string]int{"U1": 0, "U2": 1},
		ItemIndex:     map[string]int{"A": 0, "B": 1},
		UserBias:      []float64{0.1, -0.1},
		ItemBias:      []float64{0.2, -0.2},
		UserFactors:   [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		ItemFactors:   [][]float64{{0.5, 0.6}, {0.7, 0.8}},
		Factors:       2,
		Seed:          42,
		InitStdDev:    0.1,
		Clip:          true,
		RatingMin:     1,
		RatingMax:     5,
		Epochs:        20,
		Entries:       4,
		StoreHash:     0xfeed,
		TrainedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TrainDuration: 1500 * time.Millisecond,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "in memory without path", mutate: func(c *Config) { c.Path = ""; c.InMemory = true }},
		{name: "missing path", mutate: func(c *Config) { c.Path = "" }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.TTL = -time.Second }, wantErr: true},
		{name: "gc ratio zero", mutate: func(c *Config) { c.GCRatio = 0 }, wantErr: true},
		{name: "gc ratio one", mutate: func(c *Config) { c.GCRatio = 1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModelStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, time.Hour)
	ctx := context.Background()
	model := testModel()

	meta, err := store.Save(ctx, "k1", model)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.Checksum == "" || meta.SizeBytes == 0 {
		t.Errorf("metadata missing checksum or size: %+v", meta)
	}
	if meta.ExpiresAt.IsZero() {
		t.Error("ExpiresAt should be set when TTL is configured")
	}

	loaded, loadedMeta, err := store.Load(ctx, "k1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, model) {
		t.Errorf("loaded model differs:\n got %+v\nwant %+v", loaded, model)
	}
	if loadedMeta.Algorithm != "svd" || loadedMeta.UserCount != 2 || loadedMeta.ItemCount != 2 {
		t.Errorf("metadata = %+v", loadedMeta)
	}
	if loadedMeta.TrainingDurationMS != 1500 {
		t.Errorf("TrainingDurationMS = %d, want 1500", loadedMeta.TrainingDurationMS)
	}

	// Predictions survive the round trip.
	want, _ := model.Predict("U1", "B")
	got, _ := loaded.Predict("U1", "B")
	if got != want {
		t.Errorf("Predict after load = %v, want %v", got, want)
	}
}

func TestModelStore_NotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 0)
	ctx := context.Background()

	if _, _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load() error = %v, want ErrModelNotFound", err)
	}
	model, err := store.Get(ctx, "missing")
	if model != nil || err != nil {
		t.Errorf("Get() = (%v, %v), want (nil, nil)", model, err)
	}
}

func TestModelStore_CacheInterface(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 0)
	ctx := context.Background()

	if store.Name() != "badger" {
		t.Errorf("Name() = %q", store.Name())
	}
	if err := store.Put(ctx, "k", testModel()); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil || got == nil {
		t.Fatalf("Get() = (%v, %v)", got, err)
	}
	if got.Algorithm != "svd" {
		t.Errorf("Algorithm = %q", got.Algorithm)
	}
}

func TestModelStore_ListAndDelete(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 0)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if _, err := store.Save(ctx, key, testModel()); err != nil {
			t.Fatal(err)
		}
	}

	models, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	keys := make([]string, len(models))
	for i, m := range models {
		keys[i] = m.Key
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("List() keys = %v, want %v", keys, want)
	}

	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "b"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, _, err := store.Load(ctx, "b"); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load after Delete error = %v", err)
	}
	models, _ = store.List(ctx)
	if len(models) != 2 {
		t.Errorf("List() after delete = %d models, want 2", len(models))
	}
}

func TestModelStore_Overwrite(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 0)
	ctx := context.Background()

	first := testModel()
	second := testModel()
	second.GlobalBias = 4

	if _, err := store.Save(ctx, "k", first); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, "k", second); err != nil {
		t.Fatal(err)
	}
	got, _, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if got.GlobalBias != 4 {
		t.Errorf("GlobalBias = %v, want 4", got.GlobalBias)
	}
}

func TestModelStore_OnDisk(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	ctx := context.Background()

	store, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Save(ctx, "persisted", testModel()); err != nil {
		t.Fatal(err)
	}
	if err := store.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if _, _, err := reopened.Load(ctx, "persisted"); err != nil {
		t.Errorf("Load after reopen error = %v", err)
	}
}

func TestModelStore_Errors(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 0)
	ctx := context.Background()

	if _, err := store.Save(ctx, "", testModel()); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Save(empty key) error = %v", err)
	}
	if _, err := store.Save(ctx, "k", nil); err == nil {
		t.Error("Save(nil model) should fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, _, err := store.Load(cancelled, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load(cancelled) error = %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, _, err := store.Load(ctx, "k"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Load after Close error = %v", err)
	}
	if err := store.RunGC(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("RunGC after Close error = %v", err)
	}
}
