package models

import "time"

// Post represents a post written by a user.
// AuthorID is nullable: a post may exist without a bound author.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Description string    `json:"description" gorm:"type:text;not null" validate:"required"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;<-:create"`
	AuthorID    *uint     `json:"author_id"`
	Author      *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
