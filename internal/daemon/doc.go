// Package daemon assembles the lens components into a single running
// process: record store, object store, recognizer, workflow runner, and the
// HTTP API. Every component is wired explicitly in New; nothing reaches for
// globals. A file lock enforces one daemon instance per installation.
package daemon
