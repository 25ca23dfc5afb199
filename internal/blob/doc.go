// Package blob defines the persistent entities of the recognition workflow
// and the status state machine they move through.
//
// A Record is created when a caller registers a blob for recognition and is
// mutated exactly once per workflow step. Transitions are only legal along
// the edges listed in transitionSources; the store enforces them with
// conditional writes so repeated step invocations stay idempotent.
//
// Treat this package as the single source of truth for workflow semantics;
// when you add a status, update transitionSources and the result mapping in
// internal/result together.
package blob
