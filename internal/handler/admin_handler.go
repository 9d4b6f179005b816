package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyverse/internal/dto"
	"studyverse/internal/notify"
	"studyverse/internal/repository"
	"studyverse/internal/service"
)

type AdminHandler struct {
	authService service.AuthService
	bookService service.BookService
	userRepo    repository.UserRepository
	store       *notify.Store
	accessTTL   time.Duration
}

func NewAdminHandler(
	authService service.AuthService,
	bookService service.BookService,
	userRepo repository.UserRepository,
	store *notify.Store,
	accessTTL time.Duration,
) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		bookService: bookService,
		userRepo:    userRepo,
		store:       store,
		accessTTL:   accessTTL,
	}
}

// Login exchanges the moderation panel password for an admin token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, err := h.authService.IssueAdminToken(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	c.JSON(http.StatusOK, dto.AdminLoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.accessTTL.Seconds()),
	})
}

// ListStudents returns every student profile for the admin panel.
func (h *AdminHandler) ListStudents(c *gin.Context) {
	students, err := h.userRepo.ListStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	out := make([]*dto.ProfileResponse, 0, len(students))
	for i := range students {
		out = append(out, dto.NewProfileResponse(&students[i]))
	}
	c.JSON(http.StatusOK, gin.H{"students": out, "total": len(out)})
}

// ListBooks returns the whole catalog, pending and rejected included.
func (h *AdminHandler) ListBooks(c *gin.Context) {
	books, err := h.bookService.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookListResponse(books))
}

// ApproveBook moves a pending book into the library, awards the uploader,
// and tells them in their feed.
func (h *AdminHandler) ApproveBook(c *gin.Context) {
	book, err := h.bookService.Moderate(c.Request.Context(), c.Param("id"), service.DecisionApprove)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.store.Add(book.UploaderID, "Book Approved",
		fmt.Sprintf("%q is now in the library. You earned %d credits.", book.Title, service.CreditsPerApproval),
		notify.KindSuccess)
	c.JSON(http.StatusOK, dto.NewBookResponse(book))
}

// RejectBook turns a pending book away.
func (h *AdminHandler) RejectBook(c *gin.Context) {
	book, err := h.bookService.Moderate(c.Request.Context(), c.Param("id"), service.DecisionReject)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.store.Add(book.UploaderID, "Book Rejected",
		fmt.Sprintf("%q was not accepted into the library.", book.Title),
		notify.KindError)
	c.JSON(http.StatusOK, dto.NewBookResponse(book))
}

// SendNotification pushes an announcement to one student's feed, addressed
// by email, or to every student when broadcast is set.
func (h *AdminHandler) SendNotification(c *gin.Context) {
	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = notify.KindInfo
	}

	if req.Broadcast {
		students, err := h.userRepo.ListStudents(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		for i := range students {
			h.store.Add(students[i].ID, req.Title, req.Message, kind)
		}
		c.JSON(http.StatusCreated, gin.H{"message": "notification sent", "recipients": len(students)})
		return
	}

	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required unless broadcast is set"})
		return
	}
	user, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	n := h.store.Add(user.ID, req.Title, req.Message, kind)
	c.JSON(http.StatusCreated, dto.NewNotificationResponse(n))
}
