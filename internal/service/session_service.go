package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"studyverse/internal/identity"
	"studyverse/internal/models"
	"studyverse/internal/repository"
)

// Session states. A session starts in Loading, resolves exactly once to
// Anonymous or Authenticated, and afterwards only moves between those two.
const (
	StateLoading       = "loading"
	StateAnonymous     = "anonymous"
	StateAuthenticated = "authenticated"
)

// Session is a point-in-time read of the login state. Profile is set only
// when authenticated and a persisted profile has been adopted.
type Session struct {
	State   string
	Profile *models.User
}

// SessionService owns the authenticated identity and its persisted profile.
// It is the only component that talks to the identity provider, and it holds
// the provider subscription for the life of the process.
type SessionService struct {
	provider identity.Provider
	users    repository.UserRepository
	logger   *slog.Logger

	mu          sync.Mutex
	session     Session
	resolved    bool
	subs        map[int]chan Session
	nextSubID   int
	unsubscribe func()
	closed      bool
}

// NewSessionService builds the service and seeds the session from the
// provider's current state, so a restart with a live provider session does
// not force a fresh login. The subscription established here is released by
// Close.
func NewSessionService(provider identity.Provider, users repository.UserRepository, logger *slog.Logger) *SessionService {
	s := &SessionService{
		provider: provider,
		users:    users,
		logger:   logger,
		session:  Session{State: StateLoading},
		subs:     make(map[int]chan Session),
	}
	s.unsubscribe = provider.OnSessionChange(s.onSessionChange)
	return s
}

// onSessionChange receives every identity transition, including the
// immediate delivery of the current state at subscribe time.
func (s *SessionService) onSessionChange(ident *identity.Identity) {
	if ident == nil {
		s.setSession(Session{State: StateAnonymous})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := s.users.FindByID(ctx, ident.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("failed to load profile for identity",
			slog.String("identity_id", ident.ID),
			slog.String("error", err.Error()),
		)
		// Profile store failure: never present an authenticated session
		// with no profile behind it. Keep the session as it was, except
		// at seed time, where the machine still has to resolve.
		s.mu.Lock()
		resolved := s.resolved
		s.mu.Unlock()
		if !resolved {
			s.setSession(Session{State: StateAnonymous})
		}
		return
	}
	// A missing profile is normal before the first completed login; the
	// identity is still authenticated.
	s.setSession(Session{State: StateAuthenticated, Profile: profile})
}

func (s *SessionService) setSession(next Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	// Once resolved, the machine never re-enters Loading.
	if s.resolved && next.State == StateLoading {
		s.mu.Unlock()
		return
	}
	s.resolved = true
	s.session = next
	subs := make([]chan Session, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- next:
		default: // slow subscriber keeps only the states it managed to read
		}
	}
}

// Current returns the session as of now.
func (s *SessionService) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Observe returns a channel that carries the current session immediately
// and every later transition. The returned cancel func must be called when
// the observer goes away.
func (s *SessionService) Observe() (<-chan Session, func()) {
	ch := make(chan Session, 8)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	current := s.session
	s.mu.Unlock()

	ch <- current

	return ch, func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
}

// Login authenticates against the identity provider and adopts the
// persisted profile, creating it on first login. On any failure the session
// is left (or put back) unauthenticated and local state is unchanged.
func (s *SessionService) Login(ctx context.Context, credential string) (*models.User, error) {
	ident, err := s.provider.SignIn(ctx, credential)
	if err != nil {
		s.logger.Warn("identity provider sign-in failed", slog.String("error", err.Error()))
		return nil, err
	}

	profile, err := s.users.FindByID(ctx, ident.ID)
	switch {
	case err == nil:
		// Returning user: adopt the stored profile as-is.
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = &models.User{
			ID:          ident.ID,
			Email:       ident.Email,
			DisplayName: ident.DisplayName,
			PhotoURL:    ident.PhotoURL,
			Role:        "student",
			Credits:     0,
			JoinedAt:    time.Now(),
		}
		if err := s.users.Create(ctx, profile); err != nil {
			s.logger.Error("failed to persist new profile",
				slog.String("identity_id", ident.ID),
				slog.String("error", err.Error()),
			)
			s.rollbackSignIn(ctx)
			return nil, err
		}
		s.logger.Info("created profile on first login",
			slog.String("user_id", profile.ID),
			slog.String("email", profile.Email),
		)
	default:
		s.logger.Error("failed to look up profile",
			slog.String("identity_id", ident.ID),
			slog.String("error", err.Error()),
		)
		s.rollbackSignIn(ctx)
		return nil, err
	}

	s.setSession(Session{State: StateAuthenticated, Profile: profile})
	return profile, nil
}

// rollbackSignIn undoes a provider sign-in whose profile step failed, so
// the session does not present as authenticated without a profile store
// behind it.
func (s *SessionService) rollbackSignIn(ctx context.Context) {
	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Warn("identity provider sign-out failed during rollback", slog.String("error", err.Error()))
	}
	s.setSession(Session{State: StateAnonymous})
}

// Logout invalidates the provider session and clears the in-memory profile.
// Even when the provider call fails the local session becomes anonymous;
// the persisted profile is untouched.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	if err != nil {
		s.logger.Warn("identity provider sign-out failed", slog.String("error", err.Error()))
	}
	s.setSession(Session{State: StateAnonymous})
	return err
}

// AwardCredits adds a positive amount to the profile's balance and
// refreshes the in-memory session if it holds that profile. Moderation does
// not go through here; its award is part of the approval transaction.
func (s *SessionService) AwardCredits(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return validationFailed("amount", "credit award must be positive")
	}

	if err := s.users.AddCredits(ctx, userID, amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info("credits awarded",
		slog.String("user_id", userID),
		slog.Int("amount", amount),
	)

	s.mu.Lock()
	current := s.session
	s.mu.Unlock()
	if current.State == StateAuthenticated && current.Profile != nil && current.Profile.ID == userID {
		if refreshed, err := s.users.FindByID(ctx, userID); err == nil {
			s.setSession(Session{State: StateAuthenticated, Profile: refreshed})
		}
	}
	return nil
}

// Close tears down the provider subscription and all observers. Safe to
// call more than once.
func (s *SessionService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = make(map[int]chan Session)
	s.mu.Unlock()

	s.unsubscribe()
	for _, ch := range subs {
		close(ch)
	}
}
