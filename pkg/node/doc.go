// Package node implements the node lifecycle: token handling and the
// state machine driving join, attach, and remove against the mesh daemon.
//
// A node starts Unset (no token). Joining assigns a token through the
// daemon's provisioning handshake; attaching registers the node's runtime
// handlers for the current process lifetime; removing erases the daemon's
// persisted state for the token and returns the node to Unset. No
// transition skips token acquisition before attach.
package node
