package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

type CourseService struct {
	courseRepo *repository.CourseRepository
	log        zerolog.Logger
}

func NewCourseService(courseRepo *repository.CourseRepository, log zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		log:        log.With().Str("component", "course_service").Logger(),
	}
}

func (s *CourseService) GetAll(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CourseService) Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	c := &model.Course{Title: req.Title, Description: req.Description, Outline: req.Outline}
	if err := s.courseRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Int("course_id", c.ID).Msg("Course created")
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, id int, req *model.UpdateCourseRequest) (*model.Course, error) {
	c := &model.Course{ID: id, Title: req.Title, Description: req.Description, Outline: req.Outline}
	updated, err := s.courseRepo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	return s.courseRepo.GetByID(ctx, id)
}

func (s *CourseService) Delete(ctx context.Context, id int) error {
	deleted, err := s.courseRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
