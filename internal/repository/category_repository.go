package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) error {
	const query = `
		INSERT INTO categories (id, name, display_order, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.pool.Exec(ctx, query, category.ID, category.Name, category.DisplayOrder)
	return err
}

func (r *CategoryRepository) CreateOption(ctx context.Context, option models.Option) error {
	const query = `
		INSERT INTO options (id, category_id, label, is_typical, display_order)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		option.ID,
		option.CategoryID,
		option.Label,
		option.IsTypical,
		option.DisplayOrder,
	)
	return err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (models.Category, error) {
	const query = `
		SELECT id, name, display_order, created_at FROM categories WHERE id = $1
	`
	var category models.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.DisplayOrder,
		&category.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const query = `
		SELECT id, name, display_order, created_at FROM categories ORDER BY display_order
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.DisplayOrder,
			&category.CreatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CategoryRepository) Options(ctx context.Context, categoryID string) ([]models.Option, error) {
	const query = `
		SELECT id, category_id, label, is_typical, display_order
		FROM options WHERE category_id = $1 ORDER BY display_order
	`
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		var option models.Option
		if err := rows.Scan(
			&option.ID,
			&option.CategoryID,
			&option.Label,
			&option.IsTypical,
			&option.DisplayOrder,
		); err != nil {
			return nil, err
		}
		options = append(options, option)
	}
	return options, rows.Err()
}
