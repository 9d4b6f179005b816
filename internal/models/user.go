package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the persisted profile for an authenticated identity. One row per
// identity, keyed by the identity provider's stable ID. Logout never deletes
// it; only the in-memory session goes away.
type User struct {
	// Not always a UUID: Google issues numeric subject strings.
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	PhotoURL    string    `json:"photo_url"`
	Role        string    `gorm:"default:'student';not null" json:"role"` // "student" or "admin"
	Credits     int       `gorm:"default:0;not null;check:credits >= 0" json:"credits"`
	JoinedAt    time.Time `json:"joined_at"`

	// Current reading position. Both nil when no book is in progress.
	CurrentBookID *string `gorm:"type:uuid" json:"current_book_id,omitempty"`
	CurrentPage   *int    `json:"current_page,omitempty"`

	BooksRead []BookRead `gorm:"foreignKey:UserID" json:"books_read,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now()
	}
	return
}

func (User) TableName() string {
	return "users"
}
