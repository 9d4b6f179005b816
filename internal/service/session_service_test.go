package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"studyverse/internal/identity"
	"studyverse/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionService_StartsAnonymousWhenSignedOut(t *testing.T) {
	provider := &fakeProvider{}
	mockUserRepo := new(MockUserRepository)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	session := svc.Current()
	assert.Equal(t, StateAnonymous, session.State)
	assert.Nil(t, session.Profile)
}

func TestSessionService_AdoptsLiveProviderSession(t *testing.T) {
	provider := &fakeProvider{current: &identity.Identity{ID: "user-1", Email: "student@example.com"}}
	mockUserRepo := new(MockUserRepository)
	profile := &models.User{ID: "user-1", Email: "student@example.com", Role: "student"}
	mockUserRepo.On("FindByID", mock.Anything, "user-1").Return(profile, nil)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	session := svc.Current()
	assert.Equal(t, StateAuthenticated, session.State)
	assert.Equal(t, "user-1", session.Profile.ID)
}

func TestSessionService_ProfileStoreFailureAtSeedResolvesAnonymous(t *testing.T) {
	provider := &fakeProvider{current: &identity.Identity{ID: "user-1", Email: "student@example.com"}}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").
		Return(nil, errors.New("connection refused"))

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	session := svc.Current()
	assert.Equal(t, StateAnonymous, session.State)
	assert.Nil(t, session.Profile)
}

func TestSessionService_ProfileStoreFailureKeepsPriorSession(t *testing.T) {
	provider := &fakeProvider{}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").
		Return(nil, errors.New("connection refused"))

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()
	assert.Equal(t, StateAnonymous, svc.Current().State)

	provider.emit(&identity.Identity{ID: "user-1", Email: "student@example.com"})

	session := svc.Current()
	assert.Equal(t, StateAnonymous, session.State)
	assert.Nil(t, session.Profile)
}

func TestLogin_FirstLoginCreatesProfile(t *testing.T) {
	provider := &fakeProvider{signInIdentity: &identity.Identity{
		ID:          "user-1",
		Email:       "new@example.com",
		DisplayName: "New Student",
	}}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	profile, err := svc.Login(context.Background(), "new@example.com|New Student")

	assert.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "student", profile.Role)
	assert.Equal(t, 0, profile.Credits)
	assert.Empty(t, profile.BooksRead)
	assert.Nil(t, profile.CurrentBookID)
	assert.False(t, profile.JoinedAt.IsZero())

	session := svc.Current()
	assert.Equal(t, StateAuthenticated, session.State)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_ReturningUserKeepsStoredProfile(t *testing.T) {
	provider := &fakeProvider{signInIdentity: &identity.Identity{
		ID:          "user-1",
		Email:       "back@example.com",
		DisplayName: "Name From Provider",
	}}
	stored := &models.User{
		ID:          "user-1",
		Email:       "back@example.com",
		DisplayName: "Name They Chose",
		Role:        "student",
		Credits:     35,
	}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").Return(stored, nil)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	profile, err := svc.Login(context.Background(), "back@example.com|x")

	assert.NoError(t, err)
	assert.Equal(t, "Name They Chose", profile.DisplayName)
	assert.Equal(t, 35, profile.Credits)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_ProfileCreateFailureRollsBackSignIn(t *testing.T) {
	provider := &fakeProvider{signInIdentity: &identity.Identity{ID: "user-1", Email: "new@example.com"}}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	_, err := svc.Login(context.Background(), "new@example.com|x")

	assert.Error(t, err)
	assert.Equal(t, 1, provider.signOutCalls)
	assert.Equal(t, StateAnonymous, svc.Current().State)
}

func TestLogin_SignInFailureLeavesSessionAnonymous(t *testing.T) {
	provider := &fakeProvider{signInErr: identity.ErrSignInFailed}
	svc := NewSessionService(provider, new(MockUserRepository), discardLogger())
	defer svc.Close()

	_, err := svc.Login(context.Background(), "bad-credential")

	assert.ErrorIs(t, err, identity.ErrSignInFailed)
	assert.Equal(t, StateAnonymous, svc.Current().State)
}

func TestLogout_ProviderErrorStillClearsSession(t *testing.T) {
	provider := &fakeProvider{
		current:    &identity.Identity{ID: "user-1", Email: "s@example.com"},
		signOutErr: errors.New("provider unreachable"),
	}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").
		Return(&models.User{ID: "user-1", Role: "student"}, nil)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	err := svc.Logout(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateAnonymous, svc.Current().State)
}

func TestObserve_DeliversCurrentStateImmediately(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewSessionService(provider, new(MockUserRepository), discardLogger())
	defer svc.Close()

	ch, cancel := svc.Observe()
	defer cancel()

	select {
	case session := <-ch:
		assert.Equal(t, StateAnonymous, session.State)
	case <-time.After(time.Second):
		t.Fatal("no immediate session delivery")
	}
}

func TestObserve_SeesTransitions(t *testing.T) {
	provider := &fakeProvider{}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").
		Return(&models.User{ID: "user-1", Role: "student"}, nil)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	ch, cancel := svc.Observe()
	defer cancel()
	<-ch // initial anonymous state

	provider.emit(&identity.Identity{ID: "user-1", Email: "s@example.com"})

	select {
	case session := <-ch:
		assert.Equal(t, StateAuthenticated, session.State)
		assert.Equal(t, "user-1", session.Profile.ID)
	case <-time.After(time.Second):
		t.Fatal("no transition delivered")
	}
}

func TestObserve_CancelIsIdempotent(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewSessionService(provider, new(MockUserRepository), discardLogger())
	defer svc.Close()

	_, cancel := svc.Observe()
	cancel()
	assert.NotPanics(t, cancel)
}

func TestAwardCredits_RejectsNonPositiveAmount(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewSessionService(provider, new(MockUserRepository), discardLogger())
	defer svc.Close()

	err := svc.AwardCredits(context.Background(), "user-1", 0)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	err = svc.AwardCredits(context.Background(), "user-1", -5)
	assert.ErrorAs(t, err, &validationErr)
}

func TestAwardCredits_UnknownUser(t *testing.T) {
	provider := &fakeProvider{}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("AddCredits", mock.Anything, "ghost", 5).Return(gorm.ErrRecordNotFound)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	err := svc.AwardCredits(context.Background(), "ghost", 5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAwardCredits_RefreshesCurrentProfile(t *testing.T) {
	provider := &fakeProvider{current: &identity.Identity{ID: "user-1", Email: "s@example.com"}}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").
		Return(&models.User{ID: "user-1", Role: "student", Credits: 10}, nil).Once()
	mockUserRepo.On("AddCredits", mock.Anything, "user-1", 5).Return(nil)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").
		Return(&models.User{ID: "user-1", Role: "student", Credits: 15}, nil)

	svc := NewSessionService(provider, mockUserRepo, discardLogger())
	defer svc.Close()

	err := svc.AwardCredits(context.Background(), "user-1", 5)

	assert.NoError(t, err)
	assert.Equal(t, 15, svc.Current().Profile.Credits)
}

func TestClose_Idempotent(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewSessionService(provider, new(MockUserRepository), discardLogger())

	svc.Close()
	assert.NotPanics(t, svc.Close)
}
