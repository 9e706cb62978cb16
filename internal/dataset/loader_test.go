// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/recommend"
)

const sampleCSV = `User,Movie,Rating
U1,A,5
U1,B,1
U2,A,1
U2,B,five
U2,C,
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestLoader(t *testing.T, mutate func(*Config)) *Loader {
	t.Helper()

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	l, err := NewLoader(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	return l
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "parquet", mutate: func(c *Config) { c.Format = FormatParquet }},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xlsx" }, wantErr: true},
		{name: "empty column", mutate: func(c *Config) { c.ItemColumn = "" }, wantErr: true},
		{name: "long delimiter", mutate: func(c *Config) { c.Delimiter = "||" }, wantErr: true},
		{name: "negative threads", mutate: func(c *Config) { c.Threads = -1 }, wantErr: true},
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

func TestLoader_LoadCSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "ratings.csv", sampleCSV)
	rows, err := newTestLoader(t, nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []recommend.RawEntry{
		{User: "U1", Item: "A", Rating: "5"},
		{User: "U1", Item: "B", Rating: "1"},
		{User: "U2", Item: "A", Rating: "1"},
		{User: "U2", Item: "B", Rating: "five"},
		{User: "U2", Item: "C", Rating: ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Load() =\n%v\nwant\n%v", rows, want)
	}
}

func TestLoader_PreservesFileOrder(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("User,Movie,Rating\n")
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&b, "u%d,item-%d,%d\n", i%37, 4999-i, 1+i%5)
	}
	path := writeFile(t, "big.csv", b.String())

	rows, err := newTestLoader(t, func(c *Config) { c.Threads = 4 }).Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5000 {
		t.Fatalf("rows = %d, want 5000", len(rows))
	}
	for i, r := range rows {
		if want := fmt.Sprintf("item-%d", 4999-i); r.Item != want {
			t.Fatalf("row %d item = %q, want %q", i, r.Item, want)
		}
	}
}

func TestLoader_CustomColumns(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "custom.tsv", "viewer\tfilm title\tscore\textra\nann\tHeat\t4/5\tx\n")
	l := newTestLoader(t, func(c *Config) {
		c.Format = FormatCSV
		c.Delimiter = "\t"
		c.UserColumn = "viewer"
		c.ItemColumn = "film title"
		c.RatingColumn = "score"
	})

	rows, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []recommend.RawEntry{{User: "ann", Item: "Heat", Rating: "4/5"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Load() = %v, want %v", rows, want)
	}
}

func TestLoader_LoadParquet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ratings.parquet")

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	defer db.Close()

	copySQL := fmt.Sprintf(`COPY (
		SELECT * FROM (VALUES ('U1', 'A', 5.0), ('U1', 'B', 1.5), ('U2', 'C', 3.0)) t("User", "Movie", "Rating")
	) TO %s (FORMAT PARQUET)`, quoteLiteral(path))
	if _, err := db.ExecContext(context.Background(), copySQL); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	rows, err := newTestLoader(t, nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if v, _ := recommend.Normalize(rows[1].Rating).Value(); rows[1].Item != "B" || v != 1.5 {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestLoader_LoadCorpus(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "ratings.csv", sampleCSV)
	store, stats, err := newTestLoader(t, nil).LoadCorpus(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadCorpus() error = %v", err)
	}
	if store.Len() != 5 || stats.Entries != 5 {
		t.Errorf("entries = %d / %d, want 5", store.Len(), stats.Entries)
	}
	// "five" normalizes to 5; only the empty cell is imputed.
	if stats.Imputed != 1 {
		t.Errorf("Imputed = %d, want 1", stats.Imputed)
	}
	if stats.Users != 2 || stats.Items != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	l := newTestLoader(t, func(c *Config) { c.Path = "" })
	if _, err := l.Load(ctx, ""); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Load(\"\") error = %v, want ErrEmptyPath", err)
	}

	if _, err := newTestLoader(t, nil).Load(ctx, filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Load(missing file) should fail")
	}

	wrongCols := writeFile(t, "wrong.csv", "a,b,c\n1,2,3\n")
	if _, err := newTestLoader(t, nil).Load(ctx, wrongCols); err == nil {
		t.Error("Load(wrong columns) should fail")
	}

	onlyBad := writeFile(t, "bad.csv", "User,Movie,Rating\nU1,A,meh\n")
	if _, _, err := newTestLoader(t, nil).LoadCorpus(ctx, onlyBad); !errors.Is(err, recommend.ErrInvalidRating) {
		t.Errorf("LoadCorpus(no parseable ratings) error = %v, want ErrInvalidRating", err)
	}

	if _, err := NewLoader(Config{Format: "xml"}, zerolog.Nop()); err == nil {
		t.Error("NewLoader should validate config")
	}
}

func TestLoader_ResolveFormat(t *testing.T) {
	t.Parallel()

	auto := newTestLoader(t, nil)
	forced := newTestLoader(t, func(c *Config) { c.Format = FormatParquet })

	tests := []struct {
		l    *Loader
		path string
		want Format
	}{
		{auto, "r.csv", FormatCSV},
		{auto, "r.CSV", FormatCSV},
		{auto, "r.parquet", FormatParquet},
		{auto, "r.pq", FormatParquet},
		{auto, "ratings", FormatCSV},
		{forced, "r.csv", FormatParquet},
	}
	for _, tt := range tests {
		if got := tt.l.resolveFormat(tt.path); got != tt.want {
			t.Errorf("resolveFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdent = %s", got)
	}
	if got := quoteLiteral("it's.csv"); got != "'it''s.csv'" {
		t.Errorf("quoteLiteral = %s", got)
	}
}
