// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package services provides suture.Service wrappers for Reelrank components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so the supervisor can name it in
log messages.

# Available Services

HTTP Server (HTTPServerService):
  - Runs ListenAndServe in a goroutine
  - Drains connections with Shutdown when the context is canceled
  - Returns listener failures so the supervisor restarts the server

Model Maintenance (MaintenanceService):
  - Optionally trains the baseline model once at startup
  - Sweeps expired entries from the in-memory model cache on a ticker
  - Runs BadgerDB value-log GC on the persistent model store

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())

	tree.AddDataService(services.NewMaintenanceService(engine, store,
	    services.MaintenanceServiceConfig{WarmOnStartup: true}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second, logger))

	tree.Serve(ctx)

# Error Handling

Return values determine supervisor behavior:

	nil         -> service stopped cleanly, not restarted
	error       -> service crashed, restarted with backoff
	ctx.Err()   -> shutdown requested, normal termination
*/
package services
