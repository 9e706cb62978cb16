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
	"path/filepath"
	"strings"
	"time"

	// DuckDB driver - reads CSV and Parquet rating files
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/metrics"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// Format selects how a ratings file is read.
type Format string

// Supported formats.
const (
	FormatAuto    Format = "auto"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ErrEmptyPath is returned when no ratings path is configured.
var ErrEmptyPath = errors.New("ratings path is empty")

// Config holds dataset settings.
type Config struct {
	// Path is the ratings file.
	Path string `koanf:"path"`

	// Format is csv, parquet or auto (by file extension).
	Format Format `koanf:"format"`

	// Column names in the file. Matched exactly, including case.
	UserColumn   string `koanf:"user_column"`
	ItemColumn   string `koanf:"item_column"`
	RatingColumn string `koanf:"rating_column"`

	// Delimiter overrides CSV delimiter detection when set.
	Delimiter string `koanf:"delimiter"`

	// Threads limits DuckDB worker threads. Zero uses DuckDB's default.
	Threads int `koanf:"threads"`
}

// DefaultConfig returns the column layout of the reference ratings table.
func DefaultConfig() Config {
	return Config{
		Path:         "ratings.csv",
		Format:       FormatAuto,
		UserColumn:   "User",
		ItemColumn:   "Movie",
		RatingColumn: "Rating",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatAuto, FormatCSV, FormatParquet:
	default:
		return fmt.Errorf("data.format must be auto, csv or parquet, got %q", c.Format)
	}
	if c.UserColumn == "" || c.ItemColumn == "" || c.RatingColumn == "" {
		return fmt.Errorf("data column names must not be empty")
	}
	if len(c.Delimiter) > 1 {
		return fmt.Errorf("data.delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.Threads < 0 {
		return fmt.Errorf("data.threads must not be negative, got %d", c.Threads)
	}
	return nil
}

// Loader reads rating tables through an in-memory DuckDB connection.
// The file is only read, never written.
type Loader struct {
	cfg    Config
	logger zerolog.Logger
}

// NewLoader creates a loader.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoader(cfg Config, logger zerolog.Logger) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset config: %w", err)
	}
	return &Loader{
		cfg:    cfg,
		logger: logger.With().Str("component", "dataset").Logger(),
	}, nil
}

// Load reads every row of path in file order. All columns are read as text;
// parsing is left to recommend.PrepareCorpus. NULL cells become empty strings.
func (l *Loader) Load(ctx context.Context, path string) ([]recommend.RawEntry, error) {
	if path == "" {
		path = l.cfg.Path
	}
	if path == "" {
		return nil, ErrEmptyPath
	}

	format := l.resolveFormat(path)
	start := time.Now()
	rows, err := l.read(ctx, path, format)
	elapsed := time.Since(start)
	metrics.RecordDatasetLoad(string(format), elapsed, len(rows), err)

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	l.logger.Info().
		Str("path", path).
		Str("format", string(format)).
		Int("rows", len(rows)).
		Dur("duration", elapsed).
		Msg("ratings loaded")
	return rows, nil
}

// LoadCorpus loads path and prepares it as a baseline store.
func (l *Loader) LoadCorpus(ctx context.Context, path string) (*recommend.RatingStore, recommend.CorpusStats, error) {
	rows, err := l.Load(ctx, path)
	if err != nil {
		return nil, recommend.CorpusStats{}, err
	}
	store, stats, err := recommend.PrepareCorpus(rows)
	if err != nil {
		return nil, recommend.CorpusStats{}, fmt.Errorf("prepare corpus: %w", err)
	}
	if stats.Imputed > 0 {
		l.logger.Warn().
			Int("imputed", stats.Imputed).
			Float64("mean", stats.Mean).
			Msg("unparseable ratings replaced with the corpus mean")
	}
	return store, stats, nil
}

func (l *Loader) read(ctx context.Context, path string, format Format) ([]recommend.RawEntry, error) {
	db, err := sql.Open("duckdb", l.dsn())
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close() //nolint:errcheck // in-memory connection, close errors not actionable

	query := l.buildQuery(path, format)
	rs, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rs.Close() //nolint:errcheck // rows are fully drained below

	var out []recommend.RawEntry
	for rs.Next() {
		var user, item, rating sql.NullString
		if err := rs.Scan(&user, &item, &rating); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out)+1, err)
		}
		out = append(out, recommend.RawEntry{
			User:   user.String,
			Item:   item.String,
			Rating: rating.String,
		})
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// dsn opens an in-memory database. Insertion order is preserved so rows
// come back in file order.
func (l *Loader) dsn() string {
	dsn := ":memory:?preserve_insertion_order=true&autoinstall_known_extensions=false&autoload_known_extensions=false"
	if l.cfg.Threads > 0 {
		dsn += fmt.Sprintf("&threads=%d", l.cfg.Threads)
	}
	return dsn
}

func (l *Loader) resolveFormat(path string) Format {
	if l.cfg.Format != "" && l.cfg.Format != FormatAuto {
		return l.cfg.Format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet
	default:
		return FormatCSV
	}
}

func (l *Loader) buildQuery(path string, format Format) string {
	var source string
	switch format {
	case FormatParquet:
		source = fmt.Sprintf("read_parquet(%s)", quoteLiteral(path))
	default:
		opts := "header=true, all_varchar=true"
		if l.cfg.Delimiter != "" {
			opts += ", delim=" + quoteLiteral(l.cfg.Delimiter)
		}
		source = fmt.Sprintf("read_csv(%s, %s)", quoteLiteral(path), opts)
	}

	return fmt.Sprintf(
		"SELECT CAST(%s AS VARCHAR), CAST(%s AS VARCHAR), CAST(%s AS VARCHAR) FROM %s",
		quoteIdent(l.cfg.UserColumn),
		quoteIdent(l.cfg.ItemColumn),
		quoteIdent(l.cfg.RatingColumn),
		source,
	)
}

// quoteIdent quotes a column name for DuckDB.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a string literal for DuckDB.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
