package models

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating has no (author, recipe) uniqueness: a user may rate the same recipe
// more than once.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Value     int       `gorm:"not null" json:"value"` // MinRating..MaxRating
	RecipeID  uint      `gorm:"not null;index" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
