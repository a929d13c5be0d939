// Package chat wires the conversation loop: it owns the runtime session per
// user, drives turns, serves the authorization callback, and resumes
// suspended turns with the encoded credential response.
package chat
