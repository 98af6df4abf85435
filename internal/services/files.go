package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"innoportal/internal/apperr"
	"innoportal/internal/models"
	"innoportal/internal/policy"
)

// PublicUploadPrefix is the URL prefix the upload directory is served under.
const PublicUploadPrefix = "/uploads/"

var allowedMIMEPrefixes = []string{
	"image/",
	"video/",
	"audio/",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.",
}

type UploadInput struct {
	Header       *multipart.FileHeader
	Description  *string
	ArticleID    *string
	NewsID       *string
	InnovationID *string
}

type FileFilter struct {
	ArticleID    string
	NewsID       string
	InnovationID string
	UploadedBy   string
}

type FileService struct {
	db       *gorm.DB
	dir      string
	maxBytes int64
	log      zerolog.Logger
}

func NewFileService(conn *gorm.DB, dir string, maxBytes int64, log zerolog.Logger) *FileService {
	return &FileService{db: conn, dir: dir, maxBytes: maxBytes, log: log}
}

// Store writes the upload to disk under a generated name and records it. The disk copy is
// removed again if the row cannot be written.
func (s *FileService) Store(ctx context.Context, actor *models.User, in UploadInput) (*models.File, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if in.Header == nil {
		return nil, apperr.Validation("no file uploaded")
	}
	if in.Header.Size > s.maxBytes {
		return nil, apperr.Validation("file is larger than %d bytes", s.maxBytes)
	}

	target := CommentTarget{ArticleID: in.ArticleID, NewsID: in.NewsID, InnovationID: in.InnovationID}.normalized()
	if target.contentRefs() > 1 {
		return nil, apperr.Validation("a file can be attached to at most one of articleId, newsId, innovationId")
	}
	tx := s.db.WithContext(ctx)
	if target.contentRefs() == 1 {
		if _, err := loadTarget(tx, target); err != nil {
			return nil, err
		}
	}

	src, err := in.Header.Open()
	if err != nil {
		return nil, apperr.Validation("cannot read uploaded file")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, apperr.Validation("cannot detect file type")
	}
	if !mimeAllowed(mtype.String()) {
		return nil, apperr.Validation("file type %s is not allowed", mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(in.Header.Filename))
	}
	name := uuid.NewString() + ext
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	diskPath := filepath.Join(s.dir, name)
	size, err := writeFile(diskPath, src)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Filename:     name,
		OriginalName: filepath.Base(in.Header.Filename),
		Description:  nilIfBlank(in.Description),
		Path:         PublicUploadPrefix + name,
		MimeType:     mtype.String(),
		Size:         size,
		UploadedBy:   actor.ID,
		ArticleID:    target.ArticleID,
		NewsID:       target.NewsID,
		InnovationID: target.InnovationID,
	}
	if err := tx.Create(file).Error; err != nil {
		s.removeFromDisk(diskPath)
		return nil, apperr.FromDB(err)
	}
	s.log.Info().Str("file_id", file.ID).Str("mime", file.MimeType).Int64("size", size).Msg("file stored")
	return file, nil
}

func writeFile(path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}
	return size, nil
}

func mimeAllowed(m string) bool {
	base, _, _ := strings.Cut(m, ";")
	for _, prefix := range allowedMIMEPrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}

func (s *FileService) List(ctx context.Context, f FileFilter) ([]models.File, error) {
	q := s.db.WithContext(ctx).Model(&models.File{})
	if f.ArticleID != "" {
		q = q.Where("article_id = ?", f.ArticleID)
	}
	if f.NewsID != "" {
		q = q.Where("news_id = ?", f.NewsID)
	}
	if f.InnovationID != "" {
		q = q.Where("innovation_id = ?", f.InnovationID)
	}
	if f.UploadedBy != "" {
		q = q.Where("uploaded_by = ?", f.UploadedBy)
	}
	var files []models.File
	if err := q.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return files, nil
}

// Delete removes the row and then, best-effort, the file on disk.
func (s *FileService) Delete(ctx context.Context, actor *models.User, id string) (bool, error) {
	if actor == nil {
		return false, apperr.ErrAuthRequired
	}
	tx := s.db.WithContext(ctx)
	var file models.File
	if err := tx.First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.FromDB(err)
	}
	if file.UploadedBy != actor.ID && !policy.CanModerate(actor.Role) {
		return false, apperr.Forbidden("delete file")
	}
	res := tx.Delete(&file)
	if res.Error != nil {
		return false, apperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.removeFromDisk(filepath.Join(s.dir, file.Filename))
	return true, nil
}

func (s *FileService) removeFromDisk(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", path).Msg("failed to remove stored file")
	}
}
