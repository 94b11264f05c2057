package domain

// Book Model
type Book struct {
	ID          uint     `gorm:"primaryKey" json:"id"`                  // Primary key
	Title       string   `gorm:"size:255;not null" json:"title"`        // Book title
	Author      string   `gorm:"size:255;not null" json:"author"`       // Book author
	Description string   `gorm:"type:text" json:"description"`          // Book description
	Reviews     []Review `gorm:"constraint:OnDelete:CASCADE;" json:"-"` // Reviews referencing this book
}
