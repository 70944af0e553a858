package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

var ErrEditRequestNotFound = errors.New("edit request not found")

const editRequestColumns = `
	id, image_id, annotator_id, reason, status, consumed, resolved_by, resolved_at, created_at
`

type EditRequestRepository struct {
	pool *pgxpool.Pool
}

func NewEditRequestRepository(pool *pgxpool.Pool) *EditRequestRepository {
	return &EditRequestRepository{pool: pool}
}

func (r *EditRequestRepository) Create(ctx context.Context, req models.EditRequest) error {
	const query = `
		INSERT INTO edit_requests (id, image_id, annotator_id, reason, status, consumed, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
	`
	_, err := r.pool.Exec(ctx, query, req.ID, req.ImageID, req.AnnotatorID, req.Reason, req.Status)
	return err
}

func (r *EditRequestRepository) GetByID(ctx context.Context, id string) (models.EditRequest, error) {
	query := `SELECT ` + editRequestColumns + ` FROM edit_requests WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *EditRequestRepository) PendingForImage(ctx context.Context, imageID, annotatorID string) (models.EditRequest, error) {
	query := `SELECT ` + editRequestColumns + `
		FROM edit_requests
		WHERE image_id = $1 AND annotator_id = $2 AND status = 'pending'`
	return r.scanOne(r.pool.QueryRow(ctx, query, imageID, annotatorID))
}

// ActiveGrant returns an approved, not yet consumed request for the pair.
func (r *EditRequestRepository) ActiveGrant(ctx context.Context, imageID, annotatorID string) (models.EditRequest, error) {
	query := `SELECT ` + editRequestColumns + `
		FROM edit_requests
		WHERE image_id = $1 AND annotator_id = $2 AND status = 'approved' AND consumed = FALSE
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, imageID, annotatorID))
}

// Resolve moves a pending request to approved or denied. Returns false when
// the request was not pending anymore.
func (r *EditRequestRepository) Resolve(ctx context.Context, id string, status models.EditRequestStatus, resolverID string) (bool, error) {
	const query = `
		UPDATE edit_requests
		SET status = $2, resolved_by = $3, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	cmd, err := r.pool.Exec(ctx, query, id, status, resolverID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *EditRequestRepository) Consume(ctx context.Context, id string) error {
	const query = `
		UPDATE edit_requests SET consumed = TRUE WHERE id = $1 AND status = 'approved'
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *EditRequestRepository) List(ctx context.Context, status *models.EditRequestStatus) ([]models.EditRequest, error) {
	query := `SELECT ` + editRequestColumns + ` FROM edit_requests`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.EditRequest
	for rows.Next() {
		req, err := scanEditRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ExpirePending denies pending requests created before the cutoff.
func (r *EditRequestRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int, error) {
	const query = `
		UPDATE edit_requests
		SET status = 'denied', resolved_at = NOW()
		WHERE status = 'pending' AND created_at < $1
	`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *EditRequestRepository) scanOne(row pgx.Row) (models.EditRequest, error) {
	req, err := scanEditRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EditRequest{}, ErrEditRequestNotFound
		}
		return models.EditRequest{}, err
	}
	return req, nil
}

func scanEditRequest(row pgx.Row) (models.EditRequest, error) {
	var req models.EditRequest
	err := row.Scan(
		&req.ID,
		&req.ImageID,
		&req.AnnotatorID,
		&req.Reason,
		&req.Status,
		&req.Consumed,
		&req.ResolvedBy,
		&req.ResolvedAt,
		&req.CreatedAt,
	)
	return req, err
}
