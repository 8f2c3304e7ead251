package models

import "time"

// User represents a registered user of the application.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(30);not null" validate:"required,max=30"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email,max=255"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(35);not null" validate:"required,max=35"`
	LastName     string    `json:"last_name" gorm:"type:varchar(35);not null" validate:"required,max=35"`
	Location     string    `json:"location" gorm:"type:varchar(45);not null" validate:"required,max=45"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime;<-:create"`
	// Posts owned by this user. Deleting the user deletes them too;
	// the cascade constraint is declared on the Post side.
	Posts []Post `json:"posts" gorm:"foreignKey:AuthorID"`
}
