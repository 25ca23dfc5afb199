// Package main hosts the Lens CLI entrypoint and command graph.
//
// The Cobra-based command tree serves two roles: `lens serve` runs the
// recognition daemon in the foreground, and the remaining commands are a
// thin HTTP client for a running daemon (registering blobs, uploading
// content, fetching results, and inspecting service state). It centralizes
// configuration resolution and API client construction so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
