package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Moderation states. A book starts pending and moves exactly once to
// approved or rejected; there is no way back out of a terminal state.
const (
	BookStatusPending  = "pending"
	BookStatusApproved = "approved"
	BookStatusRejected = "rejected"
)

type Book struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Author        string    `gorm:"not null" json:"author"`
	Category      string    `gorm:"not null" json:"category"`
	Pages         int       `gorm:"not null" json:"pages"`
	UploaderID    string    `gorm:"size:64;not null;index" json:"uploader_id"`
	UploaderEmail string    `gorm:"not null" json:"uploader_email"`
	Status        string    `gorm:"default:'pending';not null;index" json:"status"`
	FileRef       string    `json:"file_ref"`
	UploadDate    time.Time `json:"upload_date"`

	Uploader *User `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
}

func (book *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if book.UploadDate.IsZero() {
		book.UploadDate = time.Now()
	}
	return
}

func (Book) TableName() string {
	return "books"
}
