package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyverse/internal/dto"
	"studyverse/internal/repository"
	"studyverse/internal/service"
)

type ProfileHandler struct {
	userRepo        repository.UserRepository
	progressService service.ProgressService
}

func NewProfileHandler(userRepo repository.UserRepository, progressService service.ProgressService) *ProfileHandler {
	return &ProfileHandler{
		userRepo:        userRepo,
		progressService: progressService,
	}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.userRepo.FindByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(profile))
}

// Update edits the user-owned profile fields. Credits, role and reading
// history are never writable through here.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.userRepo.FindByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	profile.DisplayName = strings.TrimSpace(req.DisplayName)
	profile.Email = strings.TrimSpace(req.Email)
	if err := h.userRepo.Update(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "profile update failed"})
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileResponse(profile))
}

// ReadingHistory returns the finished books, most recent first.
func (h *ProfileHandler) ReadingHistory(c *gin.Context) {
	reads, err := h.userRepo.ListBookReads(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reading history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reading_history": dto.NewBookReadResponses(reads)})
}

// Rewards returns the derived dashboard numbers: credits, reading progress,
// and surprise eligibility.
func (h *ProfileHandler) Rewards(c *gin.Context) {
	summary, err := h.progressService.Summary(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ProfileHandler) CurrentBook(c *gin.Context) {
	current, err := h.progressService.CurrentBook(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if current == nil {
		c.JSON(http.StatusOK, gin.H{"current_reading": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_reading": dto.CurrentReadingResponse{
		Book: dto.NewBookResponse(&current.Book),
		Page: current.Page,
	}})
}

func (h *ProfileHandler) SetCurrentBook(c *gin.Context) {
	var req dto.SetCurrentBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.progressService.SetCurrentBook(c.Request.Context(), c.GetString("userID"), req.BookID, req.Page); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reading position updated"})
}

func (h *ProfileHandler) FinishBook(c *gin.Context) {
	var req dto.FinishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.progressService.FinishBook(c.Request.Context(), c.GetString("userID"), req.BookID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book marked as read"})
}
