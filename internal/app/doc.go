// Package app is the composition root for tabula.
//
// Run loads configuration (config.toml plus the API_URL override), opens the
// log file, reads UI preferences and builds the REST client. It then runs the
// Bubble Tea program and, when metrics_addr is set, a Prometheus scrape
// endpoint side by side in an errgroup:
//
//	Run()
//	 ├─> config.Load()       file < flags < API_URL
//	 ├─> logging.Setup()     zerolog to log_file
//	 ├─> prefs.Load()        theme, body column
//	 ├─> resource.NewClient()
//	 └─> errgroup
//	      ├─> serveMetrics() /metrics, /healthz (optional)
//	      └─> ui.Run()       blocks until quit
//
// Quitting the UI cancels the group, which shuts the metrics server down.
// A metrics server failure cancels the group's context and the UI exits.
//
// Configuration and client errors are returned before the terminal is taken
// over. Request failures after startup never reach Run; they surface as
// status and error banners inside the UI.
package app
