package store

import "context"

// Store is the durable keyed medium holding pending authorization records
// between the moment a turn suspends and the moment the identity provider
// redirects back. Keys are OAuth state tokens and must be treated as
// capabilities: unguessable, never logged.
type Store interface {
	// Put persists data under key, overwriting any existing entry. A failed
	// Put is fatal to the current turn: without the record the redirect can
	// never be correlated back.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the payload for key and deletes the entry as a side
	// effect of a successful read. Two concurrent reads of the same key may
	// both observe the payload before either delete lands; the legitimate
	// caller is a single browser redirect, so the race is accepted rather
	// than guarded.
	Get(ctx context.Context, key string) ([]byte, bool, error)
}
