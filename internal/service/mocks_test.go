package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"studyverse/internal/cache"
	"studyverse/internal/identity"
	"studyverse/internal/models"
	"studyverse/internal/storage"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) AddCredits(ctx context.Context, userID string, amount int) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) SetCurrentBook(ctx context.Context, userID string, bookID *string, page *int) error {
	args := m.Called(ctx, userID, bookID, page)
	return args.Error(0)
}

func (m *MockUserRepository) MarkBookRead(ctx context.Context, userID, bookID string) error {
	args := m.Called(ctx, userID, bookID)
	return args.Error(0)
}

func (m *MockUserRepository) ListBookReads(ctx context.Context, userID string) ([]models.BookRead, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookRead), args.Error(1)
}

// MockBookRepository mocks the BookRepository interface
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) List(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookRepository) ListByStatus(ctx context.Context, status string) ([]models.Book, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) Moderate(ctx context.Context, bookID, newStatus string, award int) (*models.Book, error) {
	args := m.Called(ctx, bookID, newStatus, award)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPositionCache mocks the PositionCache interface
type MockPositionCache struct {
	mock.Mock
}

func (m *MockPositionCache) Save(ctx context.Context, pos *cache.Position) error {
	args := m.Called(ctx, pos)
	return args.Error(0)
}

func (m *MockPositionCache) Get(ctx context.Context, userID, bookID string) (*cache.Position, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.Position), args.Error(1)
}

func (m *MockPositionCache) Delete(ctx context.Context, userID, bookID string) error {
	args := m.Called(ctx, userID, bookID)
	return args.Error(0)
}

// MockBlobStore mocks the storage.BlobStore interface
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Store(ctx context.Context, r io.Reader, meta storage.Metadata) (string, error) {
	args := m.Called(ctx, r, meta)
	return args.String(0), args.Error(1)
}

// fakeProvider is a controllable identity.Provider for session tests.
type fakeProvider struct {
	signInIdentity *identity.Identity
	signInErr      error
	signOutErr     error
	signOutCalls   int

	current *identity.Identity
	subs    []func(*identity.Identity)
}

func (p *fakeProvider) SignIn(ctx context.Context, credential string) (*identity.Identity, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	p.current = p.signInIdentity
	return p.signInIdentity, nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.signOutCalls++
	if p.signOutErr != nil {
		return p.signOutErr
	}
	p.current = nil
	return nil
}

func (p *fakeProvider) OnSessionChange(fn func(*identity.Identity)) func() {
	p.subs = append(p.subs, fn)
	fn(p.current)
	return func() {}
}

func (p *fakeProvider) emit(ident *identity.Identity) {
	p.current = ident
	for _, fn := range p.subs {
		fn(ident)
	}
}
