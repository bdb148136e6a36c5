package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, outline) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.Outline).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, outline, created_at, updated_at FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.Outline, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CourseRepository) GetAll(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, outline, created_at, updated_at FROM courses ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Outline, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) Update(ctx context.Context, c *model.Course) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET title = $1, description = $2, outline = $3, updated_at = NOW() WHERE id = $4`,
		c.Title, c.Description, c.Outline, c.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
