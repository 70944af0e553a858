package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/ids"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/storage"
)

// ImportService brings new images into the annotation pool: the file goes to
// the object store, the metadata row makes it visible to the queue.
type ImportService struct {
	images ImageStore
	store  *storage.ObjectStore
	log    zerolog.Logger
}

func NewImportService(images ImageStore, store *storage.ObjectStore, log zerolog.Logger) *ImportService {
	return &ImportService{
		images: images,
		store:  store,
		log:    log,
	}
}

func (s *ImportService) Import(ctx context.Context, filename, contentType string, data []byte) (models.Image, error) {
	if len(data) == 0 {
		return models.Image{}, validationf("empty file")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return models.Image{}, validationf("unsupported content type %q", contentType)
	}

	imageID := ids.New()
	objectKey := s.buildObjectKey(imageID, filename)

	_, err := s.store.Client().PutObject(ctx, s.store.Bucket(), objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return models.Image{}, fmt.Errorf("put object: %w", err)
	}

	image := models.Image{
		ID:       imageID,
		Filename: filename,
		URL:      s.store.PublicURL(objectKey),
	}
	if err := s.images.Create(ctx, image); err != nil {
		return models.Image{}, fmt.Errorf("save metadata: %w", err)
	}

	s.log.Info().
		Str("image_id", imageID).
		Str("filename", filename).
		Msg("image imported")

	return s.images.GetByID(ctx, imageID)
}

func (s *ImportService) buildObjectKey(imageID, filename string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", imageID, ext))
}
