// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package dataset loads the baseline ratings table from CSV or Parquet.
//
// Files are read with DuckDB's read_csv (all columns as text) or
// read_parquet, in file order. Ratings stay raw strings; normalization and
// mean imputation happen in recommend.PrepareCorpus.
//
//	loader, err := dataset.NewLoader(cfg.Data, logger)
//	store, stats, err := loader.LoadCorpus(ctx, "")
package dataset
