// Package logging configures structured slog output for versio.
// Index builds and searches log JSON events to a size-rotated file under
// ~/.versio/logs/, optionally mirrored to stderr with --debug.
package logging
