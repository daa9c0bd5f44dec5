package service

import (
	"context"
	"strings"

	"MiniDrive/internal/apperr"
	"MiniDrive/internal/dto"
	"MiniDrive/model"

	"gorm.io/gorm"
)

const msgEmptyComment = "comment is empty"

// AccessChecker is the predicate that gates comments.
type AccessChecker interface {
	CanAccess(ctx context.Context, userID, fileID uint64) (bool, error)
}

type CommentService struct {
	db     *gorm.DB
	access AccessChecker
}

func NewCommentService(db *gorm.DB, access AccessChecker) *CommentService {
	return &CommentService{db: db, access: access}
}

// List returns the comments on a file, oldest first. Holding a share is
// enough, whether or not it permits downloads.
func (s *CommentService) List(ctx context.Context, callerID, fileID uint64) ([]dto.CommentResponse, error) {
	if err := s.authorize(ctx, callerID, fileID); err != nil {
		return nil, err
	}
	comments := make([]dto.CommentResponse, 0)
	err := s.db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.body, c.created_at, u.username AS author").
		Joins("JOIN users u ON u.id = c.author_user_id").
		Where("c.file_id = ?", fileID).
		Order("c.created_at ASC, c.id ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, apperr.Internal("list comments", err)
	}
	return comments, nil
}

// Add stores a trimmed comment. An empty body is rejected before access is
// checked.
func (s *CommentService) Add(ctx context.Context, callerID, fileID uint64, body string) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.BadRequest(msgEmptyComment)
	}
	if err := s.authorize(ctx, callerID, fileID); err != nil {
		return nil, err
	}
	comment := &model.Comment{FileID: fileID, AuthorUserID: callerID, Body: body}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, apperr.Internal("add comment", err)
	}
	return comment, nil
}

func (s *CommentService) authorize(ctx context.Context, callerID, fileID uint64) error {
	ok, err := s.access.CanAccess(ctx, callerID, fileID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(msgNoAccess)
	}
	return nil
}
