// Package schema defines the wire shapes exchanged with a streamed agent
// runtime: loosely typed events, user messages, the opaque authorization
// configuration carried by a credential request, and the credential-response
// encoding used to resume a suspended turn.
//
// Two runtime integrations surface the same protocol with different field
// casing (the managed engine streams snake_case objects, the in-process
// runner camelCase ones). All casing tolerance lives here; the rest of the
// module works against one canonical representation.
package schema
