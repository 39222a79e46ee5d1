package repository

import (
	"context"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/shared/store"
)

// CommentRepository defines the interface for comment-related database operations.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentsByPostID(ctx context.Context, postID string) ([]*model.Comment, error)
}

const commentCollection = "comments"

type commentStoreRepository struct {
	comments *store.Collection[model.Comment]
}

func NewCommentRepository(ctx context.Context, s store.Store) (CommentRepository, error) {
	comments := store.NewCollection[model.Comment](s, commentCollection)

	if err := comments.EnsureIndexes(ctx,
		store.Index{Field: "id", Unique: true},
		store.Index{Field: "post_id"},
	); err != nil {
		return nil, err
	}

	return &commentStoreRepository{comments: comments}, nil
}

func (r *commentStoreRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.comments.Insert(ctx, comment)
}

func (r *commentStoreRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]*model.Comment, error) {
	return r.comments.FindMany(ctx, store.Filter{"post_id": postID})
}
