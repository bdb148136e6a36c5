package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func (r *VideoRepository) Create(ctx context.Context, v *model.Video) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO videos (title, video_url) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		v.Title, v.VideoURL).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VideoRepository) GetByID(ctx context.Context, id int) (*model.Video, error) {
	v := &model.Video{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, video_url, created_at, updated_at FROM videos WHERE id = $1`, id,
	).Scan(&v.ID, &v.Title, &v.VideoURL, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VideoRepository) GetAll(ctx context.Context) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, video_url, created_at, updated_at FROM videos ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.VideoURL, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) Update(ctx context.Context, v *model.Video) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET title = $1, video_url = $2, updated_at = NOW() WHERE id = $3`,
		v.Title, v.VideoURL, v.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
