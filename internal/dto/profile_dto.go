package dto

import (
	"time"

	"studyverse/internal/models"
)

// ProfileResponse: the persisted profile as the client sees it
type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Role        string    `json:"role"`
	Credits     int       `json:"credits"`
	JoinedAt    time.Time `json:"joined_at"`
	BooksRead   []string  `json:"books_read"`
}

// UpdateProfileRequest: payload for editing the profile's own fields
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
	Email       string `json:"email" binding:"required,email"`
}

// BookReadResponse: one finished book in the reading history
type BookReadResponse struct {
	BookID     string    `json:"book_id"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewBookReadResponses(reads []models.BookRead) []BookReadResponse {
	out := make([]BookReadResponse, 0, len(reads))
	for _, r := range reads {
		out = append(out, BookReadResponse{BookID: r.BookID, FinishedAt: r.FinishedAt})
	}
	return out
}

func NewProfileResponse(user *models.User) *ProfileResponse {
	if user == nil {
		return nil
	}
	booksRead := make([]string, 0, len(user.BooksRead))
	for _, r := range user.BooksRead {
		booksRead = append(booksRead, r.BookID)
	}
	return &ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Role:        user.Role,
		Credits:     user.Credits,
		JoinedAt:    user.JoinedAt,
		BooksRead:   booksRead,
	}
}
