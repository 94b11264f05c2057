package domain

import "time" // Creation timestamps

// Review Model. The composite unique index enforces one review per user per
// book; concurrent duplicate inserts are arbitrated by the database.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                // Primary key
	BookID    uint      `gorm:"not null;uniqueIndex:idx_review_book_user" json:"book"` // Foreign key to Book (immutable)
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_book_user" json:"-"`  // Foreign key to the authoring User (immutable)
	User      User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`               // Authoring user
	Rating    int       `gorm:"not null" json:"rating"`                              // Rating, 1 to 5 inclusive
	Comment   string    `gorm:"type:text" json:"comment"`                            // Review comment
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`                    // Server-assigned creation timestamp
}
