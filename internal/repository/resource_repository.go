package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

func (r *ResourceRepository) Create(ctx context.Context, m *model.Resource) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO resources (title, file_url) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		m.Title, m.FileURL).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *ResourceRepository) GetByID(ctx context.Context, id int) (*model.Resource, error) {
	m := &model.Resource{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, file_url, created_at, updated_at FROM resources WHERE id = $1`, id,
	).Scan(&m.ID, &m.Title, &m.FileURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ResourceRepository) GetAll(ctx context.Context) ([]model.Resource, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, file_url, created_at, updated_at FROM resources ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []model.Resource
	for rows.Next() {
		var m model.Resource
		if err := rows.Scan(&m.ID, &m.Title, &m.FileURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, m)
	}
	return resources, rows.Err()
}

func (r *ResourceRepository) Update(ctx context.Context, m *model.Resource) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE resources SET title = $1, file_url = $2, updated_at = NOW() WHERE id = $3`,
		m.Title, m.FileURL, m.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ResourceRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
