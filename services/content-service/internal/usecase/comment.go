package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/repository"
)

// CommentUsecase defines the business logic for comments.
type CommentUsecase interface {
	CreateComment(ctx context.Context, postID string, params CreateCommentParams) (*model.Comment, error)
	GetComments(ctx context.Context, postID string) ([]*model.Comment, error)
}

// CreateCommentParams defines the fields of a new comment. PostID is
// whatever the request body carried; the post id passed to CreateComment
// always wins.
type CreateCommentParams struct {
	PostID  string
	MadeBy  string
	Content string
	Likes   int
}

type commentUsecase struct {
	commentRepo repository.CommentRepository
	now         func() time.Time
}

func NewCommentUsecase(commentRepo repository.CommentRepository) CommentUsecase {
	return &commentUsecase{
		commentRepo: commentRepo,
		now:         time.Now,
	}
}

func (u *commentUsecase) CreateComment(
	ctx context.Context,
	postID string,
	params CreateCommentParams,
) (*model.Comment, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", ErrInvalidInput)
	}

	comment := &model.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		MadeBy:    params.MadeBy,
		Content:   params.Content,
		LikeCount: params.Likes,
		CreatedAt: u.now().UTC().Truncate(time.Millisecond),
	}

	if err := u.commentRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

func (u *commentUsecase) GetComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", ErrInvalidInput)
	}

	comments, err := u.commentRepo.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return comments, nil
}
