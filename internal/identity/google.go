package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
	revokeEndpoint   = "https://oauth2.googleapis.com/revoke"
)

// googleUser is the slice of the userinfo response we care about.
type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleProvider implements Provider over the Google authorization-code
// flow. SignIn takes the code returned to the redirect URL, exchanges it
// server-to-server, and resolves the userinfo profile.
type GoogleProvider struct {
	*broadcaster
	config *oauth2.Config

	// lastToken is reached from concurrent requests (login and logout
	// handlers run on separate goroutines).
	tokenMu   sync.Mutex
	lastToken *oauth2.Token
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		broadcaster: newBroadcaster(),
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the URL to send the user to for authorization. The state
// must be random per attempt and verified on callback.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) SignIn(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging code: %v", ErrSignInFailed, err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching userinfo: %v", ErrSignInFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", ErrSignInFailed, resp.StatusCode)
	}

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("%w: decoding userinfo: %v", ErrSignInFailed, err)
	}
	if gu.ID == "" {
		return nil, fmt.Errorf("%w: userinfo missing subject id", ErrSignInFailed)
	}

	ident := &Identity{
		ID:          gu.ID,
		Email:       gu.Email,
		DisplayName: gu.Name,
		PhotoURL:    gu.Picture,
	}
	p.storeToken(token)
	p.set(ident)
	return ident, nil
}

func (p *GoogleProvider) storeToken(token *oauth2.Token) {
	p.tokenMu.Lock()
	p.lastToken = token
	p.tokenMu.Unlock()
}

// takeToken returns the stored token and clears it, so at most one caller
// revokes it.
func (p *GoogleProvider) takeToken() *oauth2.Token {
	p.tokenMu.Lock()
	token := p.lastToken
	p.lastToken = nil
	p.tokenMu.Unlock()
	return token
}

// SignOut revokes the last access token (best effort) and clears the
// session. The local session is cleared even when revocation fails.
func (p *GoogleProvider) SignOut(ctx context.Context) error {
	token := p.takeToken()
	p.set(nil)

	if token == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeEndpoint, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = url.Values{"token": {token.AccessToken}}.Encode()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token revocation returned status %d", resp.StatusCode)
	}
	return nil
}
