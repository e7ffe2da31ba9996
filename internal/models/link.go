package models

import (
	"time"
)

// AliasLength is the fixed size of every issued short_url.
const AliasLength = 3

// MaxOriginalURLLength bounds original_url, matching the column size.
const MaxOriginalURLLength = 512

type Link struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OriginalURL string    `gorm:"column:original_url;not null;size:512" json:"original_url"`
	ShortURL    string    `gorm:"column:short_url;uniqueIndex;not null;size:3" json:"short_url"`
	Visits      int       `gorm:"not null;default:0" json:"visits"`
	DateCreated time.Time `gorm:"column:date_created;not null;index" json:"date_created"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"-"`
}

// TableName keeps the singular table name of the original schema.
func (Link) TableName() string {
	return "link"
}
