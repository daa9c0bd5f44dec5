package service

import (
	"context"
	"errors"
	"strconv"

	"MiniDrive/internal/apperr"
	"MiniDrive/internal/dto"
	"MiniDrive/internal/storage"
	"MiniDrive/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const msgMissingUserID = "missing userId"

type AdminService struct {
	db    *gorm.DB
	store storage.Store
	gate  AdminGate
	log   *zap.Logger
}

func NewAdminService(db *gorm.DB, store storage.Store, gate AdminGate, log *zap.Logger) *AdminService {
	return &AdminService{db: db, store: store, gate: gate, log: log}
}

// ListUsers returns every user with their file count, newest first.
func (s *AdminService) ListUsers(ctx context.Context, secret string) ([]dto.UserSummary, error) {
	if err := s.gate.Check(secret); err != nil {
		s.log.Warn("admin list users rejected")
		return nil, err
	}
	users := make([]dto.UserSummary, 0)
	err := s.db.WithContext(ctx).
		Table("users AS u").
		Select("u.id, u.username, u.created_at, COUNT(f.id) AS file_count").
		Joins("LEFT JOIN files f ON f.owner_user_id = u.id").
		Group("u.id, u.username, u.created_at").
		Order("u.created_at DESC, u.id DESC").
		Scan(&users).Error
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	s.log.Info("admin action", zap.String("action", "list_users"), zap.Int("count", len(users)))
	return users, nil
}

// DeleteUser removes a user, their storage directory, and every row that
// references the user or the user's files.
func (s *AdminService) DeleteUser(ctx context.Context, secret string, userID uint64) error {
	if err := s.gate.Check(secret); err != nil {
		s.log.Warn("admin delete user rejected", zap.Uint64("user_id", userID))
		return err
	}
	if userID == 0 {
		return apperr.BadRequest(msgMissingUserID)
	}
	db := s.db.WithContext(ctx)
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return apperr.Internal("find user", err)
	}

	prefix := strconv.FormatUint(userID, 10)
	if err := s.store.RemovePrefix(ctx, prefix); err != nil {
		s.log.Warn("remove user storage failed", zap.Uint64("user_id", userID), zap.Error(err))
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		owned := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.File{}).Select("id").Where("owner_user_id = ?", userID)
		if err := tx.Where("file_id IN (?) OR author_user_id = ?", owned, userID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id IN (?) OR target_user_id = ? OR owner_user_id = ?", owned, userID, userID).Delete(&model.FileShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id IN (?) OR owner_user_id = ?", owned, userID).Delete(&model.LinkShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_user_id = ?", userID).Delete(&model.File{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, userID).Error
	})
	if err != nil {
		return apperr.Internal("delete user", err)
	}
	s.log.Info("admin action", zap.String("action", "delete_user"), zap.Uint64("user_id", userID), zap.String("username", user.Username))
	return nil
}
