package model

import "time"

type File struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	OwnerUserID uint64 `gorm:"column:owner_user_id;not null;index" json:"owner_user_id"`
	Owner       *User  `gorm:"foreignKey:OwnerUserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	OriginalName string `gorm:"column:original_name;type:varchar(255);not null" json:"original_name"`
	StoredName   string `gorm:"column:stored_name;type:varchar(255);not null" json:"-"`
	MimeType     string `gorm:"column:mime_type;type:varchar(255)" json:"mime_type"`
	SizeBytes    int64  `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`

	// StoragePath is always rooted under the owner's directory.
	StoragePath string `gorm:"column:storage_path;type:varchar(512);not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}
