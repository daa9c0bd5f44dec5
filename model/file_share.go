package model

import "time"

// FileShare grants one user access to another user's file.
type FileShare struct {
	FileID uint64 `gorm:"column:file_id;primaryKey;autoIncrement:false" json:"file_id"`
	File   *File  `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	TargetUserID uint64 `gorm:"column:target_user_id;primaryKey;autoIncrement:false;index" json:"target_user_id"`
	Target       *User  `gorm:"foreignKey:TargetUserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	OwnerUserID uint64 `gorm:"column:owner_user_id;not null;index" json:"owner_user_id"`
	Owner       *User  `gorm:"foreignKey:OwnerUserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CanDownload bool `gorm:"column:can_download;not null" json:"can_download"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the database table name.
func (FileShare) TableName() string {
	return "file_shares"
}
