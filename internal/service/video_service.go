package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

type VideoService struct {
	videoRepo *repository.VideoRepository
	log       zerolog.Logger
}

func NewVideoService(videoRepo *repository.VideoRepository, log zerolog.Logger) *VideoService {
	return &VideoService{
		videoRepo: videoRepo,
		log:       log.With().Str("component", "video_service").Logger(),
	}
}

func (s *VideoService) GetAll(ctx context.Context) ([]model.Video, error) {
	videos, err := s.videoRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []model.Video{}
	}
	return videos, nil
}

func (s *VideoService) GetByID(ctx context.Context, id int) (*model.Video, error) {
	v, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *VideoService) Create(ctx context.Context, req *model.CreateVideoRequest) (*model.Video, error) {
	v := &model.Video{Title: req.Title, VideoURL: req.VideoURL}
	if err := s.videoRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.log.Info().Int("video_id", v.ID).Msg("Video created")
	return v, nil
}

func (s *VideoService) Update(ctx context.Context, id int, req *model.UpdateVideoRequest) (*model.Video, error) {
	v := &model.Video{ID: id, Title: req.Title, VideoURL: req.VideoURL}
	updated, err := s.videoRepo.Update(ctx, v)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	return s.videoRepo.GetByID(ctx, id)
}

func (s *VideoService) Delete(ctx context.Context, id int) error {
	deleted, err := s.videoRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
