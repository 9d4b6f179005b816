package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestGoogleProvider_AuthURL(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost:8080/callback")

	u := p.AuthURL("random-state")

	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=random-state")
}

func TestGoogleProvider_TakeTokenClearsIt(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost:8080/callback")

	p.storeToken(&oauth2.Token{AccessToken: "tok"})

	first := p.takeToken()
	assert.NotNil(t, first)
	assert.Equal(t, "tok", first.AccessToken)
	assert.Nil(t, p.takeToken())
}

func TestGoogleProvider_TokenAccessIsConcurrencySafe(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost:8080/callback")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.storeToken(&oauth2.Token{AccessToken: "tok"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.takeToken()
			}
		}()
	}
	wg.Wait()
}

func TestGoogleProvider_SignOutWithoutTokenClearsSession(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost:8080/callback")

	var got []*Identity
	unsubscribe := p.OnSessionChange(func(ident *Identity) { got = append(got, ident) })
	defer unsubscribe()

	assert.NoError(t, p.SignOut(context.Background()))
	assert.Len(t, got, 2)
	assert.Nil(t, got[1])
}
