package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studyverse/internal/models"
)

// ErrNotPending is returned by Moderate when the book is no longer in the
// pending state. Status transitions are one-way: pending → approved or
// pending → rejected, each at most once.
var ErrNotPending = errors.New("book is not pending moderation")

// BookRepository defines the interface for catalog data operations.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, id string) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	ListByStatus(ctx context.Context, status string) ([]models.Book, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Moderate(ctx context.Context, bookID, newStatus string, award int) (*models.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := r.db.WithContext(ctx).Order("upload_date DESC").Find(&books).Error
	return books, err
}

func (r *bookRepository) ListByStatus(ctx context.Context, status string) ([]models.Book, error) {
	var books []models.Book
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("upload_date DESC").
		Find(&books).Error
	return books, err
}

func (r *bookRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// Moderate flips a pending book to newStatus and, when award > 0, credits
// the uploader in the same transaction. The WHERE status='pending' guard
// makes the transition (and therefore the award) happen at most once even
// under concurrent moderators: the loser of the race matches zero rows and
// gets ErrNotPending.
func (r *bookRepository) Moderate(ctx context.Context, bookID, newStatus string, award int) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, "id = ?", bookID).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Book{}).
			Where("id = ? AND status = ?", bookID, models.BookStatusPending).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}
		book.Status = newStatus

		if award > 0 {
			res := tx.Model(&models.User{}).
				Where("id = ?", book.UploaderID).
				UpdateColumn("credits", gorm.Expr("credits + ?", award))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}
