// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package supervisor provides process supervision for Reelrank using suture v4.

The tree separates model maintenance from request serving so that a crash
in one restarts without disturbing the other:

	RootSupervisor ("reelrank")
	├── DataSupervisor ("data-layer")
	│   └── MaintenanceService (warm-up, cache sweep, model store GC)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with backoff once FailureThreshold is exceeded;
failures decay at FailureDecay per second. Supervisor events are logged
through sutureslog into the zerolog-backed slog handler from
internal/logging.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(maintenance)
	tree.AddAPIService(httpService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)

Services that overrun ShutdownTimeout show up in UnstoppedServiceReport.

# See Also

  - internal/supervisor/services: the service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
