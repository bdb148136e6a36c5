package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

// ErrNotFound is the shared not-found error for the flat portal boards.
var ErrNotFound = errors.New("not found")

type NoticeService struct {
	noticeRepo *repository.NoticeRepository
	log        zerolog.Logger
}

func NewNoticeService(noticeRepo *repository.NoticeRepository, log zerolog.Logger) *NoticeService {
	return &NoticeService{
		noticeRepo: noticeRepo,
		log:        log.With().Str("component", "notice_service").Logger(),
	}
}

func (s *NoticeService) GetAll(ctx context.Context) ([]model.Notice, error) {
	notices, err := s.noticeRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []model.Notice{}
	}
	return notices, nil
}

func (s *NoticeService) GetByID(ctx context.Context, id int) (*model.Notice, error) {
	n, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *NoticeService) Create(ctx context.Context, req *model.CreateNoticeRequest) (*model.Notice, error) {
	n := &model.Notice{Title: req.Title, Body: req.Body, Pinned: req.Pinned}
	if err := s.noticeRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.log.Info().Int("notice_id", n.ID).Msg("Notice created")
	return n, nil
}

func (s *NoticeService) Update(ctx context.Context, id int, req *model.UpdateNoticeRequest) (*model.Notice, error) {
	n := &model.Notice{ID: id, Title: req.Title, Body: req.Body, Pinned: req.Pinned}
	updated, err := s.noticeRepo.Update(ctx, n)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	return s.noticeRepo.GetByID(ctx, id)
}

func (s *NoticeService) Delete(ctx context.Context, id int) error {
	deleted, err := s.noticeRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
