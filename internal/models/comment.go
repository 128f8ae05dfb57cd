package models

import (
	"time"
)

// Comment is immutable once created, so there is no UpdatedAt.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	RecipeID  uint      `gorm:"not null;index" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
