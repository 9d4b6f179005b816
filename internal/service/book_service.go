package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"studyverse/internal/models"
	"studyverse/internal/repository"
	"studyverse/internal/storage"
)

// Moderation decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Categories a book can be filed under.
var Categories = []string{
	"Programming", "Computer Science", "Mathematics", "Physics", "Chemistry",
	"Biology", "Literature", "History", "Philosophy", "Business", "Other",
}

type BookService interface {
	List(ctx context.Context) ([]models.Book, error)
	ListAll(ctx context.Context) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	Submit(ctx context.Context, uploader *models.User, sub Submission) (*models.Book, error)
	Moderate(ctx context.Context, bookID, decision string) (*models.Book, error)
}

// Submission is an upload request. File carries the PDF bytes; ContentType
// is the client-declared type, checked but never sniffed.
type Submission struct {
	Title       string
	Author      string
	Category    string
	Pages       int
	Filename    string
	ContentType string
	File        io.Reader
}

type bookService struct {
	bookRepo repository.BookRepository
	blobs    storage.BlobStore
	logger   *slog.Logger
}

func NewBookService(bookRepo repository.BookRepository, blobs storage.BlobStore, logger *slog.Logger) BookService {
	return &bookService{
		bookRepo: bookRepo,
		blobs:    blobs,
		logger:   logger,
	}
}

// List returns the approved catalog, the student-facing view.
func (s *bookService) List(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.ListByStatus(ctx, models.BookStatusApproved)
}

// ListAll returns every book regardless of status, for moderators.
func (s *bookService) ListAll(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.List(ctx)
}

func (s *bookService) GetByID(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// Submit validates the upload, hands the file to the blob store, and
// creates the pending catalog entry. Nothing is stored when validation
// fails.
func (s *bookService) Submit(ctx context.Context, uploader *models.User, sub Submission) (*models.Book, error) {
	sub.Title = strings.TrimSpace(sub.Title)
	sub.Author = strings.TrimSpace(sub.Author)
	sub.Category = strings.TrimSpace(sub.Category)

	if sub.Title == "" {
		return nil, validationFailed("title", "book title is required")
	}
	if sub.Author == "" {
		return nil, validationFailed("author", "author is required")
	}
	if sub.Category == "" {
		return nil, validationFailed("category", "category is required")
	}
	if !validCategory(sub.Category) {
		return nil, validationFailed("category", "unknown category")
	}
	if sub.Pages <= 0 {
		return nil, validationFailed("pages", "page count must be positive")
	}
	if sub.File == nil {
		return nil, validationFailed("file", "a PDF file is required")
	}
	if sub.ContentType != "application/pdf" {
		return nil, validationFailed("file", "only PDF files are accepted")
	}

	ref, err := s.blobs.Store(ctx, sub.File, storage.Metadata{
		Filename:    sub.Filename,
		ContentType: sub.ContentType,
		UploaderID:  uploader.ID,
	})
	if err != nil {
		s.logger.Error("blob store rejected upload",
			slog.String("uploader", uploader.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	book := &models.Book{
		Title:         sub.Title,
		Author:        sub.Author,
		Category:      sub.Category,
		Pages:         sub.Pages,
		UploaderID:    uploader.ID,
		UploaderEmail: uploader.Email,
		Status:        models.BookStatusPending,
		FileRef:       ref,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		s.logger.Error("failed to create book entry",
			slog.String("uploader", uploader.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("book submitted",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
		slog.String("uploader", uploader.ID),
	)
	return book, nil
}

// Moderate resolves a pending book. Approval awards the uploader
// CreditsPerApproval inside the same transaction as the status change, so a
// book can never be approved without its single credit award, or vice
// versa.
func (s *bookService) Moderate(ctx context.Context, bookID, decision string) (*models.Book, error) {
	var newStatus string
	var award int
	switch decision {
	case DecisionApprove:
		newStatus = models.BookStatusApproved
		award = CreditsPerApproval
	case DecisionReject:
		newStatus = models.BookStatusRejected
	default:
		return nil, validationFailed("decision", "decision must be approve or reject")
	}

	book, err := s.bookRepo.Moderate(ctx, bookID, newStatus, award)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrNotPending):
			return nil, ErrAlreadyModerated
		default:
			s.logger.Error("moderation failed",
				slog.String("book_id", bookID),
				slog.String("decision", decision),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
	}

	s.logger.Info("book moderated",
		slog.String("book_id", book.ID),
		slog.String("status", book.Status),
		slog.Int("credits_awarded", award),
	)
	return book, nil
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
