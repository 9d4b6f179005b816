package models

import "time"

// BookRead records that a user finished a book. The composite primary key
// gives booksRead its set semantics: re-finishing a book is an upsert, never
// a duplicate row.
type BookRead struct {
	UserID     string    `gorm:"primaryKey;size:64" json:"user_id"`
	BookID     string    `gorm:"primaryKey;type:uuid" json:"book_id"`
	FinishedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"finished_at"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (BookRead) TableName() string {
	return "book_reads"
}
