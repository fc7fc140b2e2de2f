// Package log provides structured protocol event logging for the mesh
// node harness.
//
// Components emit Event values describing model messages, lifecycle
// transitions, and errors. Applications choose a sink: SlogAdapter for
// console output, FileLogger for a CBOR event file, MultiLogger for both,
// or NoopLogger to disable capture entirely.
package log
