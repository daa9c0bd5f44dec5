package model

import "time"

// LinkShare is a public download capability identified by its token.
type LinkShare struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	FileID uint64 `gorm:"column:file_id;not null;index" json:"file_id"`
	File   *File  `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	OwnerUserID uint64 `gorm:"column:owner_user_id;not null;index" json:"-"`
	Owner       *User  `gorm:"foreignKey:OwnerUserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Token string `gorm:"column:token;type:varchar(64);not null;uniqueIndex" json:"token"`

	ExpiresAt     *time.Time `gorm:"column:expires_at" json:"expires_at"`
	MaxDownloads  *int       `gorm:"column:max_downloads" json:"max_downloads"`
	DownloadCount int        `gorm:"column:download_count;not null;default:0" json:"download_count"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the database table name.
func (LinkShare) TableName() string {
	return "link_shares"
}

// Expired reports whether the link is past its expiry at now.
func (l *LinkShare) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Exhausted reports whether the download cap has been reached.
func (l *LinkShare) Exhausted() bool {
	return l.MaxDownloads != nil && l.DownloadCount >= *l.MaxDownloads
}
