// Package agentauth relays per-user OAuth2 authorization through a streamed
// conversation with a remote tool-using agent.
//
// When the agent needs a credential mid-turn it emits a reserved
// credential-request function call instead of finishing. This package
// detects that request, suspends the turn keyed by the OAuth state, serves
// the identity-provider redirect callback and resumes the turn exactly once
// with the credential response re-encoded for the runtime in use.
//
// New is the umbrella entry point: it wires the runtime transport, the
// pending-authorization registry, the conversation service and the callback
// handler from a single option structure that can be populated from CLI
// flags or a configuration file. The sub-packages remain usable on their
// own: schema detects and encodes the wire shapes, auth owns suspension and
// correlation, runtime provides the transports and chat the conversation
// loop.
package agentauth
