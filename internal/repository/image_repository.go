package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

func (r *ImageRepository) Create(ctx context.Context, image models.Image) error {
	const query = `
		INSERT INTO images (id, filename, url, is_improper, improper_reason, reported_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		image.ID,
		image.Filename,
		image.URL,
		image.IsImproper,
		image.ImproperReason,
		image.ReportedBy,
	)
	return err
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (models.Image, error) {
	const query = `
		SELECT id, filename, url, is_improper, improper_reason, reported_by, created_at
		FROM images WHERE id = $1
	`
	var image models.Image
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&image.ID,
		&image.Filename,
		&image.URL,
		&image.IsImproper,
		&image.ImproperReason,
		&image.ReportedBy,
		&image.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Image{}, ErrImageNotFound
		}
		return models.Image{}, err
	}
	return image, nil
}

// ListActive returns the shared candidate ordering: every image not flagged
// improper, in creation order. All queue indexes address this sequence.
func (r *ImageRepository) ListActive(ctx context.Context) ([]models.Image, error) {
	const query = `
		SELECT id, filename, url, is_improper, improper_reason, reported_by, created_at
		FROM images
		WHERE is_improper = FALSE
		ORDER BY created_at, id
	`
	return r.list(ctx, query)
}

func (r *ImageRepository) List(ctx context.Context) ([]models.Image, error) {
	const query = `
		SELECT id, filename, url, is_improper, improper_reason, reported_by, created_at
		FROM images
		ORDER BY created_at, id
	`
	return r.list(ctx, query)
}

func (r *ImageRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM images`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkImproper flips the flag only when it is not already set, so a second
// report loses. Returns false when no row changed.
func (r *ImageRepository) MarkImproper(ctx context.Context, id, reason, reporterID string) (bool, error) {
	const query = `
		UPDATE images
		SET is_improper = TRUE, improper_reason = $2, reported_by = $3
		WHERE id = $1 AND is_improper = FALSE
	`
	cmd, err := r.pool.Exec(ctx, query, id, reason, reporterID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ImageRepository) ClearImproper(ctx context.Context, id string) error {
	const query = `
		UPDATE images
		SET is_improper = FALSE, improper_reason = NULL, reported_by = NULL
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepository) list(ctx context.Context, query string) ([]models.Image, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var image models.Image
		if err := rows.Scan(
			&image.ID,
			&image.Filename,
			&image.URL,
			&image.IsImproper,
			&image.ImproperReason,
			&image.ReportedBy,
			&image.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}
