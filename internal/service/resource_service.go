package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

type ResourceService struct {
	resourceRepo *repository.ResourceRepository
	log          zerolog.Logger
}

func NewResourceService(resourceRepo *repository.ResourceRepository, log zerolog.Logger) *ResourceService {
	return &ResourceService{
		resourceRepo: resourceRepo,
		log:          log.With().Str("component", "resource_service").Logger(),
	}
}

func (s *ResourceService) GetAll(ctx context.Context) ([]model.Resource, error) {
	resources, err := s.resourceRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []model.Resource{}
	}
	return resources, nil
}

func (s *ResourceService) GetByID(ctx context.Context, id int) (*model.Resource, error) {
	m, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *ResourceService) Create(ctx context.Context, req *model.CreateResourceRequest) (*model.Resource, error) {
	m := &model.Resource{Title: req.Title, FileURL: req.FileURL}
	if err := s.resourceRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info().Int("resource_id", m.ID).Msg("Resource created")
	return m, nil
}

func (s *ResourceService) Update(ctx context.Context, id int, req *model.UpdateResourceRequest) (*model.Resource, error) {
	m := &model.Resource{ID: id, Title: req.Title, FileURL: req.FileURL}
	updated, err := s.resourceRepo.Update(ctx, m)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	return s.resourceRepo.GetByID(ctx, id)
}

func (s *ResourceService) Delete(ctx context.Context, id int) error {
	deleted, err := s.resourceRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
