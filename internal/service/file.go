package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"time"

	"MiniDrive/internal/apperr"
	"MiniDrive/internal/storage"
	"MiniDrive/model"
	"MiniDrive/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgFileNotFound = "file not found"
	msgNoAccess     = "access denied"
	msgFileMissing  = "file content is missing"
	msgNoFile       = "no file uploaded"
	msgFileTooLarge = "file too large"

	defaultMimeType = "application/octet-stream"
	// maxKeyAttempts bounds retries when a stored name collides.
	maxKeyAttempts = 5
)

// UploadInput is one file received from a client.
type UploadInput struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// Download is an open object ready to be streamed. Callers close Body.
type Download struct {
	File        model.File
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type FileService struct {
	db        *gorm.DB
	store     storage.Store
	log       *zap.Logger
	maxUpload int64
	now       func() time.Time
}

func NewFileService(db *gorm.DB, store storage.Store, maxUpload int64, log *zap.Logger) *FileService {
	return &FileService{db: db, store: store, log: log, maxUpload: maxUpload, now: time.Now}
}

// ObjectKey returns the storage key of f, "<owner id>/<stored name>".
func ObjectKey(f *model.File) string {
	return strconv.FormatUint(f.OwnerUserID, 10) + "/" + f.StoredName
}

// DetectMimeType prefers a specific client supplied type, then the extension.
func DetectMimeType(name, declared string) string {
	if declared != "" && declared != defaultMimeType {
		return declared
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return defaultMimeType
}

// List returns the caller's files, newest first.
func (s *FileService) List(ctx context.Context, callerID uint64) ([]model.File, error) {
	files := make([]model.File, 0)
	err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", callerID).
		Order("created_at DESC, id DESC").
		Find(&files).Error
	if err != nil {
		return nil, apperr.Internal("list files", err)
	}
	return files, nil
}

// Upload stores the bytes under the caller's directory and records the file.
func (s *FileService) Upload(ctx context.Context, callerID uint64, in UploadInput) (*model.File, error) {
	if in.Body == nil {
		return nil, apperr.BadRequest(msgNoFile)
	}
	if s.maxUpload > 0 && in.Size > s.maxUpload {
		return nil, apperr.BadRequest(msgFileTooLarge)
	}
	originalName := filepath.Base(in.Name)
	if in.Name == "" || originalName == "." || originalName == "/" {
		originalName = "file"
	}
	safe := utils.SanitizeStoredName(in.Name)
	mimeType := DetectMimeType(originalName, in.MimeType)

	var (
		key, storedName string
		written         int64
		err             error
	)
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		storedName = fmt.Sprintf("%d_%s", s.now().UnixNano(), safe)
		key = strconv.FormatUint(callerID, 10) + "/" + storedName
		written, err = s.store.Put(ctx, key, in.Body, in.Size, storage.PutOptions{ContentType: mimeType})
		if !errors.Is(err, storage.ErrObjectExists) {
			break
		}
		seeker, ok := in.Body.(io.Seeker)
		if !ok {
			break
		}
		if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
			return nil, apperr.Internal("rewind upload", seekErr)
		}
	}
	if err != nil {
		return nil, apperr.Internal("store file", err)
	}

	file := &model.File{
		OwnerUserID:  callerID,
		OriginalName: originalName,
		StoredName:   storedName,
		MimeType:     mimeType,
		SizeBytes:    written,
		StoragePath:  s.store.Location(key),
	}
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.log.Warn("remove orphaned object", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, apperr.Internal("record file", err)
	}
	return file, nil
}

// Download opens a file for the owner or for a user holding a
// download-permitted share.
func (s *FileService) Download(ctx context.Context, callerID, fileID uint64) (*Download, error) {
	db := s.db.WithContext(ctx)
	var file model.File
	if err := db.First(&file, fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgFileNotFound)
		}
		return nil, apperr.Internal("find file", err)
	}

	if file.OwnerUserID != callerID {
		var share model.FileShare
		err := db.Where("file_id = ? AND target_user_id = ?", fileID, callerID).First(&share).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !share.CanDownload) {
			return nil, apperr.Forbidden(msgNoAccess)
		}
		if err != nil {
			return nil, apperr.Internal("find share", err)
		}
	}
	return openFile(ctx, s.store, file)
}

func openFile(ctx context.Context, store storage.Store, file model.File) (*Download, error) {
	body, info, err := store.Get(ctx, ObjectKey(&file))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperr.Gone(msgFileMissing)
		}
		return nil, apperr.Internal("open file", err)
	}
	contentType := file.MimeType
	if contentType == "" {
		contentType = DetectMimeType(file.OriginalName, info.ContentType)
	}
	return &Download{File: file, Body: body, Size: info.Size, ContentType: contentType}, nil
}

// Delete removes the caller's file. The object goes first and its removal
// is best-effort; rows referencing the file go in one transaction with it.
func (s *FileService) Delete(ctx context.Context, callerID, fileID uint64) error {
	db := s.db.WithContext(ctx)
	var file model.File
	if err := db.Where("id = ? AND owner_user_id = ?", fileID, callerID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(msgFileNotFound)
		}
		return apperr.Internal("find file", err)
	}

	if err := s.store.Remove(ctx, ObjectKey(&file)); err != nil {
		s.log.Warn("remove object failed", zap.Uint64("file_id", file.ID), zap.String("key", ObjectKey(&file)), zap.Error(err))
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.Comment{}, &model.FileShare{}, &model.LinkShare{}} {
			if err := tx.Where("file_id = ?", file.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.File{}, file.ID).Error
	})
	if err != nil {
		return apperr.Internal("delete file", err)
	}
	return nil
}
