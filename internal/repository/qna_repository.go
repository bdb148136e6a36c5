package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

type QnaRepository struct {
	pool *pgxpool.Pool
}

func NewQnaRepository(pool *pgxpool.Pool) *QnaRepository {
	return &QnaRepository{pool: pool}
}

func (r *QnaRepository) Create(ctx context.Context, p *model.QnaPost) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO qna_posts (author_id, author_name, title, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.AuthorID, p.AuthorName, p.Title, p.Body).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *QnaRepository) GetByID(ctx context.Context, id int) (*model.QnaPost, error) {
	p := &model.QnaPost{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, author_id, author_name, title, body, answer, answered_at, created_at, updated_at
		 FROM qna_posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Body, &p.Answer, &p.AnsweredAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *QnaRepository) GetAll(ctx context.Context) ([]model.QnaPost, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, author_id, author_name, title, body, answer, answered_at, created_at, updated_at
		 FROM qna_posts
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.QnaPost
	for rows.Next() {
		var p model.QnaPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Body, &p.Answer, &p.AnsweredAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SetAnswer records or replaces the admin answer on a post.
func (r *QnaRepository) SetAnswer(ctx context.Context, id int, answer string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE qna_posts SET answer = $1, answered_at = NOW(), updated_at = NOW() WHERE id = $2`,
		answer, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *QnaRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM qna_posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
