package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

// ErrNotPostAuthor is returned when a student touches someone else's post.
var ErrNotPostAuthor = errors.New("not the author of this post")

type QnaService struct {
	qnaRepo *repository.QnaRepository
	log     zerolog.Logger
}

func NewQnaService(qnaRepo *repository.QnaRepository, log zerolog.Logger) *QnaService {
	return &QnaService{
		qnaRepo: qnaRepo,
		log:     log.With().Str("component", "qna_service").Logger(),
	}
}

func (s *QnaService) GetAll(ctx context.Context) ([]model.QnaPost, error) {
	posts, err := s.qnaRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.QnaPost{}
	}
	return posts, nil
}

func (s *QnaService) GetByID(ctx context.Context, id int) (*model.QnaPost, error) {
	p, err := s.qnaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Create posts a question. Author identity comes from the verified claims,
// never from the payload.
func (s *QnaService) Create(ctx context.Context, authorID int, authorName string, req *model.CreateQnaRequest) (*model.QnaPost, error) {
	p := &model.QnaPost{
		AuthorID:   authorID,
		AuthorName: authorName,
		Title:      req.Title,
		Body:       req.Body,
	}
	if err := s.qnaRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Int("post_id", p.ID).Int("author_id", authorID).Msg("Question posted")
	return p, nil
}

// Answer records an admin answer on a post.
func (s *QnaService) Answer(ctx context.Context, id int, req *model.AnswerQnaRequest) (*model.QnaPost, error) {
	answered, err := s.qnaRepo.SetAnswer(ctx, id, req.Answer)
	if err != nil {
		return nil, err
	}
	if !answered {
		return nil, ErrNotFound
	}
	return s.qnaRepo.GetByID(ctx, id)
}

// Delete removes a post. Students may only delete their own; admins pass
// authorID 0 to bypass the ownership check.
func (s *QnaService) Delete(ctx context.Context, id, authorID int) error {
	p, err := s.qnaRepo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if authorID != 0 && p.AuthorID != authorID {
		return ErrNotPostAuthor
	}
	deleted, err := s.qnaRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
