package cart

import "context"

// SessionStore keeps carts keyed by session.
// Get returns an empty cart when nothing is stored for the key.
type SessionStore interface {
	Get(ctx context.Context, key string) (*Cart, error)
	Set(ctx context.Context, key string, cart *Cart) error
	Clear(ctx context.Context, key string) error
}

// KeyForUser derives the session key of an authenticated user
func KeyForUser(userID string) string {
	return "user:" + userID
}

// KeyForSession derives the session key of an anonymous session cookie
func KeyForSession(sessionID string) string {
	return "anon:" + sessionID
}
