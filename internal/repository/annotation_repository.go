package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

var ErrAnnotationNotFound = errors.New("annotation not found")

const annotationColumns = `
	id, image_id, category_id, annotator_id, selected_option_ids, is_duplicate,
	status, time_spent_seconds, review_status, review_note, reviewed_by, reviewed_at,
	created_at, updated_at
`

type AnnotationRepository struct {
	pool *pgxpool.Pool
}

func NewAnnotationRepository(pool *pgxpool.Pool) *AnnotationRepository {
	return &AnnotationRepository{pool: pool}
}

func (r *AnnotationRepository) GetByID(ctx context.Context, id string) (models.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *AnnotationRepository) GetByTriple(ctx context.Context, imageID, categoryID, annotatorID string) (models.Annotation, error) {
	query := `SELECT ` + annotationColumns + `
		FROM annotations
		WHERE image_id = $1 AND category_id = $2 AND annotator_id = $3`
	return r.scanOne(r.pool.QueryRow(ctx, query, imageID, categoryID, annotatorID))
}

// Upsert writes the annotation keyed on (image, category, annotator). The
// conflict guard refuses to replace a completed row with a skipped one; in
// that case the stored row is returned unchanged. Review fields are never
// touched by annotator saves.
func (r *AnnotationRepository) Upsert(ctx context.Context, ann models.Annotation) (models.Annotation, error) {
	query := `
		INSERT INTO annotations (
			id, image_id, category_id, annotator_id, selected_option_ids,
			is_duplicate, status, time_spent_seconds, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (image_id, category_id, annotator_id) DO UPDATE SET
			selected_option_ids = EXCLUDED.selected_option_ids,
			is_duplicate = EXCLUDED.is_duplicate,
			status = EXCLUDED.status,
			time_spent_seconds = EXCLUDED.time_spent_seconds,
			updated_at = NOW()
		WHERE NOT (annotations.status = 'completed' AND EXCLUDED.status = 'skipped')
		RETURNING ` + annotationColumns

	saved, err := r.scanOne(r.pool.QueryRow(ctx, query,
		ann.ID,
		ann.ImageID,
		ann.CategoryID,
		ann.AnnotatorID,
		ann.SelectedOptionIDs,
		ann.IsDuplicate,
		ann.Status,
		ann.TimeSpentSeconds,
	))
	if errors.Is(err, ErrAnnotationNotFound) {
		// Guard suppressed the update: skip against a completed row.
		return r.GetByTriple(ctx, ann.ImageID, ann.CategoryID, ann.AnnotatorID)
	}
	return saved, err
}

func (r *AnnotationRepository) ListByImage(ctx context.Context, imageID string) ([]models.Annotation, error) {
	query := `SELECT ` + annotationColumns + `
		FROM annotations WHERE image_id = $1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// CompletedImageIDs maps each image completed by anyone for the category to
// the annotator who completed it. With multiple completers an arbitrary one
// wins; the flag is what matters.
func (r *AnnotationRepository) CompletedImageIDs(ctx context.Context, categoryID string) (map[string]string, error) {
	const query = `
		SELECT image_id, annotator_id FROM annotations
		WHERE category_id = $1 AND status = 'completed'
	`
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completed := make(map[string]string)
	for rows.Next() {
		var imageID, annotatorID string
		if err := rows.Scan(&imageID, &annotatorID); err != nil {
			return nil, err
		}
		completed[imageID] = annotatorID
	}
	return completed, rows.Err()
}

func (r *AnnotationRepository) StatusCounts(ctx context.Context, annotatorID, categoryID string) (map[models.AnnotationStatus]int, error) {
	const query = `
		SELECT status, COUNT(*) FROM annotations
		WHERE annotator_id = $1 AND category_id = $2
		GROUP BY status
	`
	rows, err := r.pool.Query(ctx, query, annotatorID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.AnnotationStatus]int)
	for rows.Next() {
		var status models.AnnotationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Approve flips a pending completed annotation to approved. Returns false
// when no row changed (missing, not completed, or already approved); the
// caller decides which of those it is.
func (r *AnnotationRepository) Approve(ctx context.Context, id, reviewerID string, note *string) (bool, error) {
	const query = `
		UPDATE annotations
		SET review_status = 'approved', review_note = $3, reviewed_by = $2,
		    reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'completed' AND review_status IS NULL
	`
	cmd, err := r.pool.Exec(ctx, query, id, reviewerID, note)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// UpdateAndApprove rewrites the selection and approves in one statement, so
// the edit and the approval are never observable separately.
func (r *AnnotationRepository) UpdateAndApprove(ctx context.Context, id string, selection []string, isDuplicate *bool, reviewerID string, note *string) (models.Annotation, error) {
	query := `
		UPDATE annotations
		SET selected_option_ids = $2,
		    is_duplicate = COALESCE($3, is_duplicate),
		    review_status = 'approved',
		    review_note = $5,
		    reviewed_by = $4,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'completed'
		RETURNING ` + annotationColumns

	return r.scanOne(r.pool.QueryRow(ctx, query, id, selection, isDuplicate, reviewerID, note))
}

func (r *AnnotationRepository) ListCompleted(ctx context.Context, categoryID, annotatorID, reviewStatus *string, limit, offset int) ([]models.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations WHERE status = 'completed'`
	args := []any{}

	if categoryID != nil {
		args = append(args, *categoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if annotatorID != nil {
		args = append(args, *annotatorID)
		query += fmt.Sprintf(" AND annotator_id = $%d", len(args))
	}
	if reviewStatus != nil {
		switch *reviewStatus {
		case "pending":
			query += " AND review_status IS NULL"
		case "approved":
			query += " AND review_status = 'approved'"
		}
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *AnnotationRepository) PendingIDsByImages(ctx context.Context, imageIDs []string) ([]string, error) {
	const query = `
		SELECT id FROM annotations
		WHERE image_id = ANY($1) AND status = 'completed' AND review_status IS NULL
		ORDER BY image_id, id
	`
	rows, err := r.pool.Query(ctx, query, imageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AnnotationRepository) ReviewCounts(ctx context.Context) (total, pending, approved int, err error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE review_status IS NULL),
		       COUNT(*) FILTER (WHERE review_status = 'approved')
		FROM annotations WHERE status = 'completed'
	`
	err = r.pool.QueryRow(ctx, query).Scan(&total, &pending, &approved)
	return total, pending, approved, err
}

func (r *AnnotationRepository) scanOne(row pgx.Row) (models.Annotation, error) {
	var ann models.Annotation
	if err := row.Scan(
		&ann.ID,
		&ann.ImageID,
		&ann.CategoryID,
		&ann.AnnotatorID,
		&ann.SelectedOptionIDs,
		&ann.IsDuplicate,
		&ann.Status,
		&ann.TimeSpentSeconds,
		&ann.ReviewStatus,
		&ann.ReviewNote,
		&ann.ReviewedBy,
		&ann.ReviewedAt,
		&ann.CreatedAt,
		&ann.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Annotation{}, ErrAnnotationNotFound
		}
		return models.Annotation{}, err
	}
	return ann, nil
}

func (r *AnnotationRepository) scanAll(rows pgx.Rows) ([]models.Annotation, error) {
	var anns []models.Annotation
	for rows.Next() {
		var ann models.Annotation
		if err := rows.Scan(
			&ann.ID,
			&ann.ImageID,
			&ann.CategoryID,
			&ann.AnnotatorID,
			&ann.SelectedOptionIDs,
			&ann.IsDuplicate,
			&ann.Status,
			&ann.TimeSpentSeconds,
			&ann.ReviewStatus,
			&ann.ReviewNote,
			&ann.ReviewedBy,
			&ann.ReviewedAt,
			&ann.CreatedAt,
			&ann.UpdatedAt,
		); err != nil {
			return nil, err
		}
		anns = append(anns, ann)
	}
	return anns, rows.Err()
}
