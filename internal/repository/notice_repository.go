package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

type NoticeRepository struct {
	pool *pgxpool.Pool
}

func NewNoticeRepository(pool *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{pool: pool}
}

func (r *NoticeRepository) Create(ctx context.Context, n *model.Notice) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO notices (title, body, pinned) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		n.Title, n.Body, n.Pinned).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *NoticeRepository) GetByID(ctx context.Context, id int) (*model.Notice, error) {
	n := &model.Notice{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, body, pinned, created_at, updated_at FROM notices WHERE id = $1`, id,
	).Scan(&n.ID, &n.Title, &n.Body, &n.Pinned, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// GetAll lists notices, pinned ones first, then newest first.
func (r *NoticeRepository) GetAll(ctx context.Context) ([]model.Notice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, body, pinned, created_at, updated_at
		 FROM notices
		 ORDER BY pinned DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []model.Notice
	for rows.Next() {
		var n model.Notice
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Pinned, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

func (r *NoticeRepository) Update(ctx context.Context, n *model.Notice) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notices SET title = $1, body = $2, pinned = $3, updated_at = NOW() WHERE id = $4`,
		n.Title, n.Body, n.Pinned, n.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *NoticeRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
