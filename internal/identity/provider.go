// Package identity wraps the external identity provider. The rest of the
// application only sees the Provider interface; whether the principal comes
// from Google or the local development provider is invisible past this point.
package identity

import (
	"context"
	"errors"
	"sync"
)

var ErrSignInFailed = errors.New("identity provider sign-in failed")

// Identity is the authenticated principal as reported by the provider.
// It is observed here, never owned: the provider is the source of truth.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Provider is the external identity collaborator.
//
// OnSessionChange registers a callback that fires once immediately with the
// current session (nil when signed out) and then on every transition. The
// returned unsubscribe func is idempotent and must be called on teardown.
type Provider interface {
	SignIn(ctx context.Context, credential string) (*Identity, error)
	SignOut(ctx context.Context) error
	OnSessionChange(fn func(*Identity)) (unsubscribe func())
}

// broadcaster implements the session-change subscription shared by all
// provider implementations. Callbacks run synchronously under the lock, one
// event at a time.
type broadcaster struct {
	mu      sync.Mutex
	current *Identity
	nextID  int
	subs    map[int]func(*Identity)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]func(*Identity))}
}

func (b *broadcaster) OnSessionChange(fn func(*Identity)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	current := b.current
	b.mu.Unlock()

	// Delivery-once-at-subscribe: the new subscriber always learns the
	// current state without waiting for a transition.
	fn(current)

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broadcaster) set(ident *Identity) {
	b.mu.Lock()
	b.current = ident
	subs := make([]func(*Identity), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ident)
	}
}

func (b *broadcaster) session() *Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
