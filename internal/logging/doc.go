// Package logging configures slog for appshelf.
//
// Interactive and CLI runs log warnings to stderr as text. With --debug,
// JSON logs at debug level are also written to ~/.appshelf/logs/appshelf.log
// with size-based rotation. The MCP server never writes to stdout or stderr,
// since stdout carries the JSON-RPC stream.
package logging
