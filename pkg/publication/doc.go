// Package publication implements the periodic publication scheduler used
// by server models.
//
// The scheduler is a self-perpetuating chain of one-shot timers rather than
// a native ticker: each fire invokes the publish callback and then arms the
// next one-shot for the same period. A busy guard coalesces re-entrant
// Start calls while a fire is in progress, so at most one timer is
// outstanding at any instant.
//
// The callback runs on the timer goroutine. Callers whose callback mutates
// model or node state must marshal the work onto their event loop (see
// pkg/service) instead of mutating directly.
package publication
