// Package meshapi defines the interface boundary to the external mesh
// daemon. The daemon owns transport, the security layer, routing, and the
// provisioning algorithm; this harness only drives it through the
// asynchronous RPC surface declared here.
//
// Every lifecycle RPC takes separate success and failure continuations.
// Implementations deliver exactly one of them, asynchronously, in transport
// order; no retry or additional sequencing is imposed at this boundary.
package meshapi
