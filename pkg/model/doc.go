// Package model defines the node composition model used by the test
// harness: an Application owns addressable Elements, and each Element hosts
// one or more Models speaking a specific opcode vocabulary.
//
// Inbound messages are fanned out to every model on the target element;
// each model independently decides whether it recognizes the opcode. An
// unrecognized opcode is silent non-recognition, not an error, so models
// with disjoint vocabularies can share an element.
package model
