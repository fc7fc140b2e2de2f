// Package persistence stores the harness-side node state (token and the
// element configuration last applied on attach) as a JSON file, so a test
// run can reattach without re-provisioning.
//
// The daemon remains the authoritative store for node configuration; this
// file is a convenience cache keyed by the token.
package persistence
