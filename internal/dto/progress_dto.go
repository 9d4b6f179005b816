package dto

// SetCurrentBookRequest: payload for moving the reading position
type SetCurrentBookRequest struct {
	BookID string `json:"book_id" binding:"required"`
	Page   int    `json:"page" binding:"required,min=1"`
}

// FinishBookRequest: payload for marking a book as read
type FinishBookRequest struct {
	BookID string `json:"book_id" binding:"required"`
}

// CurrentReadingResponse: the resolved reading position
type CurrentReadingResponse struct {
	Book BookResponse `json:"book"`
	Page int          `json:"page"`
}
