// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package cli implements the reelrank cobra commands. Each command reads the
// ratings file through internal/dataset and runs a single in-process engine;
// no model is cached or persisted between invocations.
package cli
