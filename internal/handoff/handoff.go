// Package handoff bridges an anonymous web session to a chat session. The web
// form stores its in-progress submission under an unguessable session key, and
// the bot retrieves it exactly once when the user opens a chat.
package handoff

import (
	"context"
	"time"
)

// TTL after which a stored payload becomes unavailable even if never taken.
const TTL = 30 * time.Minute

// Store is a one-time-use key→payload cache. Implementations must guarantee
// that concurrent Take calls on the same key hand the payload to exactly one
// caller.
type Store interface {
	// Put stores the payload, overwriting any existing entry under the key.
	Put(ctx context.Context, key string, payload []byte) error

	// Take returns the payload and deletes the entry. ok is false when the
	// key is absent or the entry has expired.
	Take(ctx context.Context, key string) (payload []byte, ok bool, err error)
}
