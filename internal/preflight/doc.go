// Package preflight checks that the host can serve a catalog before the
// browser or MCP server starts.
//
// The checks cover:
//   - appstream collection files matched by the configured patterns
//   - cached icon directories
//   - the flatpak executable and the dpkg status database
//   - at least one usable backend
//   - a writable log directory
//   - the file descriptor limit the collection watcher needs
//
//	checker := preflight.New(preflight.WithOutput(os.Stdout))
//	results := checker.RunAll(ctx, cfg)
//	if checker.HasCriticalFailures(results) {
//	    // refuse to start
//	}
package preflight
