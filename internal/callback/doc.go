// Package callback delivers recognition results to caller-supplied endpoints
// and classifies every delivery attempt into one of four terminal outcomes.
//
// Classification is total: an attempt either succeeds with 204, fails with
// another response code, times out, or never connects. Each outcome maps to a
// terminal blob status. None of them is raised as a workflow error because
// recognition itself already succeeded; delivery trouble is recorded as data
// on the blob record instead.
package callback
