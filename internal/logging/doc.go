// Package logging assembles the structured slog loggers used across
// comicgrabr components.
//
// It owns the console handler, the per-run timestamped log file, and the
// retention pruning that keeps the log directory bounded. The console honors
// the configured level while the run file always captures debug detail. A
// no-op logger is provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so all components
// emit data with the same shape.
package logging
