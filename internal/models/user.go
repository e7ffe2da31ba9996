package models

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"unique;not null;size:80" json:"name"`
	Email          string    `gorm:"unique;not null;size:120" json:"email"`
	HashedPassword string    `gorm:"column:hashed_password;not null;size:255" json:"-"`
	About          string    `gorm:"type:text" json:"about,omitempty"`
	CreatedDate    time.Time `gorm:"column:created_date;default:CURRENT_TIMESTAMP" json:"created_date"`
	Links          []Link    `gorm:"foreignKey:UserID" json:"links,omitempty"`
}

func (User) TableName() string {
	return "users"
}
