// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelrank/internal/dataset"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	dataPath     string
	format       string
	userColumn   string
	itemColumn   string
	ratingColumn string
	logLevel     string
}

// NewRootCmd creates the reelrank command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	def := dataset.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "reelrank",
		Short: "Latent factor movie recommendations from a ratings file",
		Long: `reelrank trains a biased SVD model on a ratings table plus your own
ratings and recommends the titles you have not rated yet.

The ratings file is read once per command; nothing is written back.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.dataPath, "data", "d", def.Path, "Ratings file (csv or parquet)")
	flags.StringVar(&opts.format, "format", string(def.Format), "File format: auto, csv or parquet")
	flags.StringVar(&opts.userColumn, "user-column", def.UserColumn, "User column name")
	flags.StringVar(&opts.itemColumn, "item-column", def.ItemColumn, "Item column name")
	flags.StringVar(&opts.ratingColumn, "rating-column", def.RatingColumn, "Rating column name")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")

	cmd.AddCommand(newRecommendCmd(opts))
	cmd.AddCommand(newItemsCmd(opts))
	cmd.AddCommand(newUsersCmd(opts))

	return cmd
}

// logger writes human-readable logs to the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	if !logging.ValidLevel(o.logLevel) {
		o.logLevel = "warn"
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(logging.ParseLevel(o.logLevel)).
		With().Timestamp().Logger()
}

// loadCorpus reads and normalizes the ratings file.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (o *rootOptions) loadCorpus(ctx context.Context, logger zerolog.Logger) (*recommend.RatingStore, recommend.CorpusStats, error) {
	cfg := dataset.Config{
		Path:         o.dataPath,
		Format:       dataset.Format(o.format),
		UserColumn:   o.userColumn,
		ItemColumn:   o.itemColumn,
		RatingColumn: o.ratingColumn,
	}
	loader, err := dataset.NewLoader(cfg, logger)
	if err != nil {
		return nil, recommend.CorpusStats{}, err
	}
	store, stats, err := loader.LoadCorpus(ctx, o.dataPath)
	if err != nil {
		return nil, recommend.CorpusStats{}, fmt.Errorf("reading %s: %w", o.dataPath, err)
	}
	return store, stats, nil
}
