// Package logging assembles the structured slog loggers used by the daemon and
// the CLI.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes a no-op logger for tests and wiring code that cannot fail. The
// console handler renders one line per record ("ts LEVEL component: msg k=v")
// so daemon output stays greppable; the JSON handler is for log shippers.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
