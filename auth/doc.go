// Package auth holds the suspended-turn bookkeeping: the pending
// authorization record persisted while the user visits the identity
// provider, the registry with its read-once consumption contract, the
// correlator matching a redirect callback back to the turn it belongs to,
// and a credential manager for the in-process runner integration.
package auth
