package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`                          // Primary key
	Username string `gorm:"size:150;uniqueIndex;not null" json:"username"` // Unique username
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`    // Unique email address
	Password string `gorm:"not null" json:"-"`                             // Hashed password, never serialized
	Role     string `gorm:"size:32;default:user" json:"role"`              // Role: user or admin
}
