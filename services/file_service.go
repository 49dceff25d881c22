package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"stashbox/config"
	"stashbox/logger"
	"stashbox/models"
	"stashbox/repositories"
	"stashbox/storage"

	"gorm.io/gorm"
)

// Viewer is the resolved identity of the requesting user, passed
// explicitly into every operation instead of being read from ambient
// request state.
type Viewer struct {
	UserID uint
	Email  string
}

type ListFilesInput struct {
	Categories []models.FileCategory
	Search     string
	Sort       string
	Limit      int
}

type FileListOutput struct {
	Files []models.File `json:"files"`
	Total int64         `json:"total"`
}

type UploadFileInput struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
	Path        string
}

type FileService interface {
	List(ctx context.Context, viewer Viewer, in ListFilesInput) (FileListOutput, error)
	Upload(ctx context.Context, viewer Viewer, in UploadFileInput) (models.File, error)
	Rename(ctx context.Context, ownerID uint, fileID uint, name string, path string) (models.File, error)
	UpdateSharedUsers(ctx context.Context, ownerID uint, fileID uint, emails []string, path string) (models.File, error)
	Delete(ctx context.Context, ownerID uint, fileID uint, path string) error
	GetDownloadInfo(ctx context.Context, viewer Viewer, fileID uint) (models.File, io.ReadCloser, error)
}

type fileService struct {
	txManager repositories.TxManager
	files     repositories.FileRepository
	blobs     storage.BlobStore
	viewCache repositories.ViewCacheRepository
}

func NewFileService(
	txManager repositories.TxManager,
	files repositories.FileRepository,
	blobs storage.BlobStore,
	viewCache repositories.ViewCacheRepository,
) FileService {
	return &fileService{
		txManager: txManager,
		files:     files,
		blobs:     blobs,
		viewCache: viewCache,
	}
}

// invalidate signals that the cached render of path is stale. Best
// effort: a failed invalidation never fails the mutation that caused it.
func (s *fileService) invalidate(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.viewCache.Invalidate(ctx, path); err != nil {
		logger.Warnf("failed to invalidate view cache for %s: %v", path, err)
	}
}

func (s *fileService) List(ctx context.Context, viewer Viewer, in ListFilesInput) (FileListOutput, error) {
	sort := in.Sort
	if sort == "" {
		sort = DefaultSort
	}

	queries := BuildFileQueries(viewer.UserID, viewer.Email, in.Categories, in.Search, sort, in.Limit)
	files, total, err := s.files.ListByQueries(ctx, nil, queries)
	if err != nil {
		return FileListOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to list files", err)
	}
	if files == nil {
		files = []models.File{}
	}
	return FileListOutput{Files: files, Total: total}, nil
}

// Upload writes the blob first and the metadata record second. A failed
// metadata write triggers a compensating blob delete so no orphaned blob
// survives; if that compensation itself fails the error is classified as
// a partial failure and the key is logged for reconciliation.
func (s *fileService) Upload(ctx context.Context, viewer Viewer, in UploadFileInput) (models.File, error) {
	if in.Size < 0 {
		return models.File{}, newAppError(http.StatusBadRequest, KindValidation, "invalid file size", nil)
	}
	if in.Size > config.AppConfig.Storage.MaxFileSize {
		return models.File{}, newAppErrorWithData(http.StatusBadRequest, KindValidation, "file exceeds the maximum upload size", map[string]int64{
			"max_file_size": config.AppConfig.Storage.MaxFileSize,
			"file_size":     in.Size,
		}, nil)
	}

	name := sanitizeFilename(in.Name)
	category, extension := FileTypeOf(name)
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.NewStorageKey()
	if err := s.blobs.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to store file content", err)
	}

	file := models.File{
		Name:       name,
		Extension:  extension,
		Category:   category,
		Size:       in.Size,
		OwnerID:    viewer.UserID,
		SharedWith: []string{},
		StorageKey: key,
	}

	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.files.Create(ctx, tx, &file); err != nil {
			return err
		}
		file.URL = fmt.Sprintf("/api/files/%d/download", file.ID)
		return s.files.UpdateByIDAndOwner(ctx, tx, file.ID, file.OwnerID, map[string]interface{}{"url": file.URL})
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			logger.Warnf("orphaned blob %s left behind after failed metadata write: %v", key, delErr)
			return models.File{}, newAppError(http.StatusInternalServerError, KindPartialFailure,
				"failed to save file record and stored content could not be cleaned up", err)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to save file record", err)
	}

	s.invalidate(ctx, in.Path)
	return file, nil
}

func (s *fileService) Rename(ctx context.Context, ownerID uint, fileID uint, name string, path string) (models.File, error) {
	file, err := s.files.GetByIDAndOwner(ctx, nil, fileID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, KindNotFound, "file not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to query file", err)
	}

	newName := sanitizeFilename(name)
	if file.Extension != "" {
		newName = fmt.Sprintf("%s.%s", newName, file.Extension)
	}
	if err := s.files.UpdateByIDAndOwner(ctx, nil, fileID, ownerID, map[string]interface{}{"name": newName}); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to rename file", err)
	}

	s.invalidate(ctx, path)
	file.Name = newName
	return file, nil
}

// UpdateSharedUsers replaces the shared-with list wholesale.
func (s *fileService) UpdateSharedUsers(ctx context.Context, ownerID uint, fileID uint, emails []string, path string) (models.File, error) {
	file, err := s.files.GetByIDAndOwner(ctx, nil, fileID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, KindNotFound, "file not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to query file", err)
	}

	if emails == nil {
		emails = []string{}
	}
	if err := s.files.UpdateSharedWith(ctx, nil, fileID, ownerID, emails); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to update sharing", err)
	}

	s.invalidate(ctx, path)
	file.SharedWith = emails
	return file, nil
}

// Delete removes the metadata record first; the blob is only deleted
// after the metadata delete is confirmed, so a failed metadata delete
// leaves the blob intact.
func (s *fileService) Delete(ctx context.Context, ownerID uint, fileID uint, path string) error {
	file, err := s.files.GetByIDAndOwner(ctx, nil, fileID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, KindNotFound, "file not found", nil)
		}
		return newAppError(http.StatusInternalServerError, KindUpstream, "failed to query file", err)
	}

	if err := s.files.DeleteByIDAndOwner(ctx, nil, fileID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, KindNotFound, "file not found", nil)
		}
		return newAppError(http.StatusInternalServerError, KindUpstream, "failed to delete file record", err)
	}

	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
		logger.Warnf("orphaned blob %s left behind after deleting file %d: %v", file.StorageKey, fileID, err)
		return newAppError(http.StatusInternalServerError, KindPartialFailure,
			"file record deleted but stored content was not removed", err)
	}

	s.invalidate(ctx, path)
	return nil
}

func (s *fileService) GetDownloadInfo(ctx context.Context, viewer Viewer, fileID uint) (models.File, io.ReadCloser, error) {
	file, err := s.files.GetByIDForViewer(ctx, nil, fileID, viewer.UserID, viewer.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, nil, newAppError(http.StatusNotFound, KindNotFound, "file not found", nil)
		}
		return models.File{}, nil, newAppError(http.StatusInternalServerError, KindUpstream, "failed to query file", err)
	}

	body, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return models.File{}, nil, newAppError(http.StatusInternalServerError, KindUpstream, "failed to read file content", err)
	}
	return file, body, nil
}
