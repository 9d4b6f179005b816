package database

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"studyverse/internal/models"
)

// Seed inserts the starter catalog into an empty database so a fresh
// instance has something to browse. Runs once: if any book exists the seed
// is skipped entirely.
func Seed(db *gorm.DB, log *slog.Logger) error {
	var count int64
	if err := db.Model(&models.Book{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	librarian := models.User{
		Email:       "library@studyverse.com",
		DisplayName: "StudyVerse Library",
		Role:        "admin",
		JoinedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&librarian).Error; err != nil {
		return err
	}

	books := []models.Book{
		{
			Title:         "Introduction to React",
			Author:        "John Doe",
			Category:      "Programming",
			Pages:         250,
			UploaderID:    librarian.ID,
			UploaderEmail: librarian.Email,
			Status:        models.BookStatusApproved,
			UploadDate:    time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:         "Advanced JavaScript Concepts",
			Author:        "Jane Smith",
			Category:      "Programming",
			Pages:         180,
			UploaderID:    librarian.ID,
			UploaderEmail: librarian.Email,
			Status:        models.BookStatusApproved,
			UploadDate:    time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:         "Data Structures and Algorithms",
			Author:        "Mike Johnson",
			Category:      "Computer Science",
			Pages:         320,
			UploaderID:    librarian.ID,
			UploaderEmail: librarian.Email,
			Status:        models.BookStatusApproved,
			UploadDate:    time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		},
	}
	if err := db.Create(&books).Error; err != nil {
		return err
	}

	students := []models.User{
		{
			Email:       "alice@student.edu",
			DisplayName: "Alice Johnson",
			Role:        "student",
			Credits:     45,
			JoinedAt:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Email:       "bob@student.edu",
			DisplayName: "Bob Williams",
			Role:        "student",
			Credits:     120,
			JoinedAt:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	if err := db.Create(&students).Error; err != nil {
		return err
	}

	log.Info("Seeded starter catalog",
		slog.Int("books", len(books)),
		slog.Int("students", len(students)),
	)
	return nil
}
