package dto

import (
	"time"

	"studyverse/internal/models"
)

// BookResponse: one catalog entry
type BookResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	Pages         int       `json:"pages"`
	Status        string    `json:"status"`
	UploaderEmail string    `json:"uploader_email"`
	UploadDate    time.Time `json:"upload_date"`
}

// BookListResponse: the catalog plus its size
type BookListResponse struct {
	Books []BookResponse `json:"books"`
	Total int            `json:"total"`
}

func NewBookResponse(book *models.Book) BookResponse {
	return BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Category:      book.Category,
		Pages:         book.Pages,
		Status:        book.Status,
		UploaderEmail: book.UploaderEmail,
		UploadDate:    book.UploadDate,
	}
}

func NewBookListResponse(books []models.Book) BookListResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, NewBookResponse(&books[i]))
	}
	return BookListResponse{Books: out, Total: len(out)}
}
