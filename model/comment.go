package model

import "time"

type Comment struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	FileID uint64 `gorm:"column:file_id;not null;index" json:"file_id"`
	File   *File  `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	AuthorUserID uint64 `gorm:"column:author_user_id;not null;index" json:"author_user_id"`
	Author       *User  `gorm:"foreignKey:AuthorUserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Body string `gorm:"column:body;type:text;not null" json:"body"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the database table name.
func (Comment) TableName() string {
	return "comments"
}
