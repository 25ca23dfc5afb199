// Package workflow drives the asynchronous parts of the recognition
// lifecycle in-process: upload watches that fire once the upload window
// elapses, and recognition pipelines that run extraction, normalization,
// persistence, and callback delivery for one blob.
//
// The runner owns the goroutines behind both. Components hand work over
// through their Launcher interfaces and never block on it; a launched watch
// or pipeline is bound to the runner's lifetime, not the caller's request.
// Recover re-arms whatever an earlier process left unfinished, which both
// workflow kinds tolerate because every status write is conditional.
package workflow
