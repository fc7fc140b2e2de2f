// Package onoff implements the generic OnOff server and client models.
//
// The server holds a single state byte and answers GET/SET/SET_UNACK with a
// STATUS reply; it can also republish its state on a schedule. The client
// issues GET/SET requests to a remote element and decodes STATUS reports.
// Binding enforcement is the daemon's job; the models only track which key
// indices they were configured with.
package onoff
