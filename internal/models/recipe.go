package models

import (
	"time"
)

type Recipe struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:100;not null;index" json:"title"`
	Description  string    `gorm:"type:text" json:"description"` // Optional
	Ingredients  string    `gorm:"type:text;not null" json:"ingredients"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	AuthorID     uint      `gorm:"not null;index" json:"author_id"`
	Author       User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"author"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
