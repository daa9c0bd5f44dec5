package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"MiniDrive/internal/apperr"
	"MiniDrive/internal/dto"
	"MiniDrive/internal/repo"
	"MiniDrive/internal/storage"
	"MiniDrive/model"
	"MiniDrive/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgMissingShareData = "missing fileId or targetUsername"
	msgMissingFileID    = "missing fileId"
	msgNotOwned         = "file does not exist or is not yours"
	msgUserNotFound     = "user not found"
	msgSelfShare        = "cannot share a file with yourself"
	msgLinkNotFound     = "link not found"
	msgInvalidLink      = "invalid link"
	msgLinkExpired      = "link has expired"
	msgLinkExhausted    = "download limit reached"

	maxTokenAttempts = 5
)

type ShareService struct {
	db    *gorm.DB
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewShareService(db *gorm.DB, store storage.Store, log *zap.Logger) *ShareService {
	return &ShareService{db: db, store: store, log: log, now: time.Now}
}

func (s *ShareService) ownedFile(ctx context.Context, ownerID, fileID uint64) (*model.File, error) {
	var file model.File
	err := s.db.WithContext(ctx).Where("id = ? AND owner_user_id = ?", fileID, ownerID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(msgNotOwned)
	}
	if err != nil {
		return nil, apperr.Internal("find file", err)
	}
	return &file, nil
}

func (s *ShareService) userByName(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	return &user, nil
}

// Grant shares a file with another user, updating can_download when a
// grant already exists. canDownload defaults to true.
func (s *ShareService) Grant(ctx context.Context, ownerID, fileID uint64, targetUsername string, canDownload *bool) error {
	if fileID == 0 || strings.TrimSpace(targetUsername) == "" {
		return apperr.BadRequest(msgMissingShareData)
	}
	file, err := s.ownedFile(ctx, ownerID, fileID)
	if err != nil {
		return err
	}
	target, err := s.userByName(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == ownerID {
		return apperr.BadRequest(msgSelfShare)
	}

	allow := true
	if canDownload != nil {
		allow = *canDownload
	}
	share := model.FileShare{
		FileID:       file.ID,
		TargetUserID: target.ID,
		OwnerUserID:  ownerID,
		CanDownload:  allow,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_id"}, {Name: "target_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_download"}),
	}).Create(&share).Error
	if err != nil {
		return apperr.Internal("save share", err)
	}
	return nil
}

// ListIncoming returns files shared with userID, newest grant first.
func (s *ShareService) ListIncoming(ctx context.Context, userID uint64) ([]dto.IncomingShare, error) {
	items := make([]dto.IncomingShare, 0)
	err := s.db.WithContext(ctx).
		Table("file_shares AS s").
		Select("f.id AS file_id, f.original_name, f.size_bytes, f.created_at, u.username AS owner_username, s.can_download, s.created_at AS shared_at").
		Joins("JOIN files f ON f.id = s.file_id").
		Joins("JOIN users u ON u.id = s.owner_user_id").
		Where("s.target_user_id = ?", userID).
		Order("s.created_at DESC").
		Scan(&items).Error
	if err != nil {
		return nil, apperr.Internal("list incoming shares", err)
	}
	return items, nil
}

// ListOutgoing returns the grants on a file the caller owns.
func (s *ShareService) ListOutgoing(ctx context.Context, ownerID, fileID uint64) ([]dto.OutgoingShare, error) {
	if _, err := s.ownedFile(ctx, ownerID, fileID); err != nil {
		return nil, err
	}
	shares := make([]dto.OutgoingShare, 0)
	err := s.db.WithContext(ctx).
		Table("file_shares AS s").
		Select("u.username AS target_username, s.can_download, s.created_at").
		Joins("JOIN users u ON u.id = s.target_user_id").
		Where("s.file_id = ?", fileID).
		Order("s.created_at DESC").
		Scan(&shares).Error
	if err != nil {
		return nil, apperr.Internal("list shares", err)
	}
	return shares, nil
}

// Revoke removes a grant. Revoking a grant that does not exist succeeds.
func (s *ShareService) Revoke(ctx context.Context, ownerID, fileID uint64, targetUsername string) error {
	if fileID == 0 || strings.TrimSpace(targetUsername) == "" {
		return apperr.BadRequest(msgMissingShareData)
	}
	if _, err := s.ownedFile(ctx, ownerID, fileID); err != nil {
		return err
	}
	target, err := s.userByName(ctx, targetUsername)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Where("file_id = ? AND target_user_id = ?", fileID, target.ID).
		Delete(&model.FileShare{}).Error
	if err != nil {
		return apperr.Internal("delete share", err)
	}
	return nil
}

// CreateLink issues a public link. Expiry and cap apply only when positive.
func (s *ShareService) CreateLink(ctx context.Context, ownerID, fileID uint64, expiresInDays, maxDownloads *int) (*model.LinkShare, error) {
	if fileID == 0 {
		return nil, apperr.BadRequest(msgMissingFileID)
	}
	file, err := s.ownedFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	link := &model.LinkShare{FileID: file.ID, OwnerUserID: ownerID}
	if expiresInDays != nil && *expiresInDays > 0 {
		expiresAt := s.now().Add(time.Duration(*expiresInDays) * 24 * time.Hour)
		link.ExpiresAt = &expiresAt
	}
	if maxDownloads != nil && *maxDownloads > 0 {
		limit := *maxDownloads
		link.MaxDownloads = &limit
	}

	for attempt := 0; ; attempt++ {
		token, err := utils.GenLinkToken(utils.LinkTokenLength)
		if err != nil {
			return nil, apperr.Internal("generate token", err)
		}
		link.ID = 0
		link.Token = token
		err = s.db.WithContext(ctx).Create(link).Error
		if err == nil {
			return link, nil
		}
		if !repo.IsDuplicateKey(err) || attempt+1 >= maxTokenAttempts {
			return nil, apperr.Internal("create link", err)
		}
	}
}

// ListLinks returns the public links of a file the caller owns, newest first.
func (s *ShareService) ListLinks(ctx context.Context, ownerID, fileID uint64) ([]model.LinkShare, error) {
	if _, err := s.ownedFile(ctx, ownerID, fileID); err != nil {
		return nil, err
	}
	links := make([]model.LinkShare, 0)
	err := s.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("created_at DESC, id DESC").
		Find(&links).Error
	if err != nil {
		return nil, apperr.Internal("list links", err)
	}
	return links, nil
}

// RevokeLink deletes a link owned by the caller.
func (s *ShareService) RevokeLink(ctx context.Context, ownerID, linkID uint64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_user_id = ?", linkID, ownerID).
		Delete(&model.LinkShare{})
	if res.Error != nil {
		return apperr.Internal("delete link", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(msgLinkNotFound)
	}
	return nil
}

// ResolvePublic opens the file behind a link token and consumes one
// download. The increment is a single conditional update, so concurrent
// resolutions never push download_count past max_downloads.
func (s *ShareService) ResolvePublic(ctx context.Context, token string) (*Download, error) {
	if token == "" {
		return nil, apperr.NotFound(msgInvalidLink)
	}
	db := s.db.WithContext(ctx)
	var link model.LinkShare
	if err := db.Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgInvalidLink)
		}
		return nil, apperr.Internal("find link", err)
	}
	if link.Expired(s.now()) {
		return nil, apperr.Gone(msgLinkExpired)
	}
	if link.Exhausted() {
		return nil, apperr.Gone(msgLinkExhausted)
	}

	var file model.File
	if err := db.First(&file, link.FileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Gone(msgFileMissing)
		}
		return nil, apperr.Internal("find file", err)
	}
	// Open before counting so a missing object does not eat quota.
	download, err := openFile(ctx, s.store, file)
	if err != nil {
		return nil, err
	}

	res := db.Model(&model.LinkShare{}).
		Where("id = ? AND (max_downloads IS NULL OR download_count < max_downloads)", link.ID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if res.Error != nil {
		_ = download.Body.Close()
		return nil, apperr.Internal("count download", res.Error)
	}
	if res.RowsAffected == 0 {
		_ = download.Body.Close()
		return nil, apperr.Gone(msgLinkExhausted)
	}
	s.log.Debug("public download", zap.Uint64("link_id", link.ID), zap.Uint64("file_id", file.ID))
	return download, nil
}

// CanAccess reports whether userID owns fileID or holds any share on it.
func (s *ShareService) CanAccess(ctx context.Context, userID, fileID uint64) (bool, error) {
	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.File{}).Where("id = ? AND owner_user_id = ?", fileID, userID).Count(&n).Error; err != nil {
		return false, apperr.Internal("check access", err)
	}
	if n > 0 {
		return true, nil
	}
	if err := db.Model(&model.FileShare{}).Where("file_id = ? AND target_user_id = ?", fileID, userID).Count(&n).Error; err != nil {
		return false, apperr.Internal("check access", err)
	}
	return n > 0, nil
}
