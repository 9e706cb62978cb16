// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package logging provides the process-wide zerolog logger.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Ctx(ctx).Warn().Err(err).Msg("recommendation failed")
//
// Long-lived components take a zerolog.Logger by value and tag it:
//
//	engine, err := recommend.NewEngine(cfg, trainer, logging.Logger())
//	// logs carry "component":"recommend"
//
// # Request Context
//
// The HTTP request ID middleware stores the request ID in the context;
// Ctx and CtxWith copy it into every log line as request_id.
//
// # slog Bridge
//
// SlogHandler adapts zerolog to log/slog so sutureslog can report
// supervisor events through the same output.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
