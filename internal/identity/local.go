package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// LocalProvider authenticates anyone who presents an email, for development
// and tests. The identity ID is derived from the email so the same person
// always maps to the same identity (and therefore the same profile).
type LocalProvider struct {
	*broadcaster
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{broadcaster: newBroadcaster()}
}

// SignIn accepts "email" or "email|Display Name" as the credential.
func (p *LocalProvider) SignIn(ctx context.Context, credential string) (*Identity, error) {
	email, name, _ := strings.Cut(credential, "|")
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrSignInFailed
	}
	if name = strings.TrimSpace(name); name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	ident := &Identity{
		ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte("studyverse:"+email)).String(),
		Email:       email,
		DisplayName: name,
	}
	p.set(ident)
	return ident, nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.set(nil)
	return nil
}
