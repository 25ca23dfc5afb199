// Package api is the HTTP boundary of the lens daemon.
//
// The server side is a thin adapter over the workflow components: each
// handler drives exactly one component per request and translates classified
// faults into JSON error envelopes. No workflow state lives here. The client
// side wraps the same endpoints with typed methods for the CLI.
package api
