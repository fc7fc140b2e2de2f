// Package service wires the node harness together: a single-goroutine
// event loop, the NodeService orchestrating application, lifecycle
// manager, and daemon, and the element-scoped send path models use.
//
// All state mutation funnels through the event loop. Daemon callbacks,
// publication scheduler fires, and interactive commands are posted as
// tasks, so the lifecycle manager's transition handlers and the models'
// ProcessMessage always run on the loop goroutine.
package service
