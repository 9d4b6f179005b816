package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studyverse/internal/models"
)

// UserRepository defines the interface for profile data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListStudents(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	AddCredits(ctx context.Context, userID string, amount int) error
	SetCurrentBook(ctx context.Context, userID string, bookID *string, page *int) error
	MarkBookRead(ctx context.Context, userID, bookID string) error
	ListBookReads(ctx context.Context, userID string) ([]models.BookRead, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("BooksRead").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("BooksRead").
		Where("role = ?", "student").
		Order("joined_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// AddCredits increments the balance in a single UPDATE so concurrent awards
// cannot lose increments.
func (r *userRepository) AddCredits(ctx context.Context, userID string, amount int) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) SetCurrentBook(ctx context.Context, userID string, bookID *string, page *int) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"current_book_id": bookID, "current_page": page})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkBookRead upserts the (user, book) pair; finishing a book twice leaves
// a single row.
func (r *userRepository) MarkBookRead(ctx context.Context, userID, bookID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.BookRead{UserID: userID, BookID: bookID}).Error
}

func (r *userRepository) ListBookReads(ctx context.Context, userID string) ([]models.BookRead, error) {
	var reads []models.BookRead
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("finished_at DESC").
		Find(&reads).Error
	return reads, err
}
