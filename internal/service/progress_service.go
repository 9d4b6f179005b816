package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"studyverse/internal/cache"
	"studyverse/internal/models"
	"studyverse/internal/repository"
)

// CurrentReading resolves a profile's reading position against the catalog.
type CurrentReading struct {
	Book models.Book `json:"book"`
	Page int         `json:"page"`
}

// RewardSummary is the derived read-model behind the dashboard numbers.
type RewardSummary struct {
	Credits                 int             `json:"credits"`
	TotalBooks              int             `json:"total_books"`
	BooksRead               int             `json:"books_read"`
	ReadingProgressPercent  float64         `json:"reading_progress_percent"`
	SurpriseEligible        bool            `json:"surprise_eligible"`
	SurpriseProgressPercent float64         `json:"surprise_progress_percent"`
	CreditsToSurprise       int             `json:"credits_to_surprise"`
	CurrentReading          *CurrentReading `json:"current_reading,omitempty"`
}

type ProgressService interface {
	SetCurrentBook(ctx context.Context, userID, bookID string, page int) error
	FinishBook(ctx context.Context, userID, bookID string) error
	CurrentBook(ctx context.Context, userID string) (*CurrentReading, error)
	Summary(ctx context.Context, userID string) (*RewardSummary, error)
}

// PositionCache is the slice of cache.ProgressCache the service needs.
type PositionCache interface {
	Save(ctx context.Context, pos *cache.Position) error
	Get(ctx context.Context, userID, bookID string) (*cache.Position, error)
	Delete(ctx context.Context, userID, bookID string) error
}

type progressService struct {
	userRepo repository.UserRepository
	bookRepo repository.BookRepository
	cache    PositionCache
	logger   *slog.Logger
}

func NewProgressService(
	userRepo repository.UserRepository,
	bookRepo repository.BookRepository,
	progressCache PositionCache,
	logger *slog.Logger,
) ProgressService {
	return &progressService{
		userRepo: userRepo,
		bookRepo: bookRepo,
		cache:    progressCache,
		logger:   logger,
	}
}

// SetCurrentBook moves the user's reading position. The book must be an
// approved catalog entry and the page must land inside it.
func (s *progressService) SetCurrentBook(ctx context.Context, userID, bookID string, page int) error {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	if book.Status != models.BookStatusApproved {
		return ErrBookNotApproved
	}
	if page < 1 || page > book.Pages {
		return validationFailed("page", "page is outside the book")
	}

	if err := s.userRepo.SetCurrentBook(ctx, userID, &bookID, &page); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Cache write is best effort; the profile row is canonical.
	if err := s.cache.Save(ctx, &cache.Position{
		UserID:     userID,
		BookID:     bookID,
		Page:       page,
		LastReadAt: time.Now(),
	}); err != nil {
		s.logger.Warn("failed to cache reading position", slog.String("error", err.Error()))
	}
	return nil
}

// FinishBook adds the book to the user's read set and clears the current
// position if it pointed at this book. Finishing twice is harmless.
func (s *progressService) FinishBook(ctx context.Context, userID, bookID string) error {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if err := s.userRepo.MarkBookRead(ctx, userID, book.ID); err != nil {
		return err
	}

	profile, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if profile.CurrentBookID != nil && *profile.CurrentBookID == book.ID {
		if err := s.userRepo.SetCurrentBook(ctx, userID, nil, nil); err != nil {
			return err
		}
		if err := s.cache.Delete(ctx, userID, book.ID); err != nil {
			s.logger.Warn("failed to drop cached reading position", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("book finished",
		slog.String("user_id", userID),
		slog.String("book_id", book.ID),
	)
	return nil
}

// CurrentBook returns the resolved reading position, or nil when no book is
// in progress or the stored reference no longer resolves.
func (s *progressService) CurrentBook(ctx context.Context, userID string) (*CurrentReading, error) {
	profile, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.resolveCurrent(ctx, profile)
}

func (s *progressService) resolveCurrent(ctx context.Context, profile *models.User) (*CurrentReading, error) {
	if profile.CurrentBookID == nil || profile.CurrentPage == nil {
		return nil, nil
	}
	book, err := s.bookRepo.FindByID(ctx, *profile.CurrentBookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	page := *profile.CurrentPage
	// The cache sees every position write, so a hit carries the freshest
	// page. A miss or error falls back to the profile row.
	cached, err := s.cache.Get(ctx, profile.ID, book.ID)
	if err != nil {
		s.logger.Warn("failed to read cached reading position", slog.String("error", err.Error()))
	} else if cached != nil && cached.Page >= 1 && cached.Page <= book.Pages {
		page = cached.Page
	}
	return &CurrentReading{Book: *book, Page: page}, nil
}

// Summary recomputes every derived reward figure from the profile and the
// approved catalog.
func (s *progressService) Summary(ctx context.Context, userID string) (*RewardSummary, error) {
	profile, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	total, err := s.bookRepo.CountByStatus(ctx, models.BookStatusApproved)
	if err != nil {
		return nil, err
	}

	current, err := s.resolveCurrent(ctx, profile)
	if err != nil {
		return nil, err
	}

	read := len(profile.BooksRead)
	return &RewardSummary{
		Credits:                 profile.Credits,
		TotalBooks:              int(total),
		BooksRead:               read,
		ReadingProgressPercent:  ReadingProgressPercent(read, int(total)),
		SurpriseEligible:        SurpriseEligible(profile.Credits),
		SurpriseProgressPercent: SurpriseProgressPercent(profile.Credits),
		CreditsToSurprise:       CreditsToSurprise(profile.Credits),
		CurrentReading:          current,
	}, nil
}
