package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyverse/internal/dto"
	"studyverse/internal/models"
	"studyverse/internal/repository"
	"studyverse/internal/service"
)

type BookHandler struct {
	bookService    service.BookService
	userRepo       repository.UserRepository
	maxUploadBytes int64
}

func NewBookHandler(bookService service.BookService, userRepo repository.UserRepository, maxUploadBytes int64) *BookHandler {
	return &BookHandler{
		bookService:    bookService,
		userRepo:       userRepo,
		maxUploadBytes: maxUploadBytes,
	}
}

// List returns the approved catalog.
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.bookService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookListResponse(books))
}

// GetByID returns one book. Pending and rejected entries are visible only to
// admins; everyone else gets a 404 so the moderation queue stays private.
func (h *BookHandler) GetByID(c *gin.Context) {
	book, err := h.bookService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if book.Status != models.BookStatusApproved && c.GetString("role") != "admin" {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrBookNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewBookResponse(book))
}

// Categories lists the allowed book categories for the upload form.
func (h *BookHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": service.Categories})
}

// Upload takes a multipart form (title, author, category, pages, file) and
// files the book for moderation.
func (h *BookHandler) Upload(c *gin.Context) {
	userID := c.GetString("userID")
	uploader, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	pages, err := strconv.Atoi(c.PostForm("pages"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pages must be a number"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a PDF file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	book, err := h.bookService.Submit(c.Request.Context(), uploader, service.Submission{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		Category:    c.PostForm("category"),
		Pages:       pages,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		File:        file,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBookResponse(book))
}
