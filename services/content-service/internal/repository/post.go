package repository

import (
	"context"
	"time"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/shared/store"
)

// PostRepository defines the interface for post-related database operations.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	// GetPost returns nil, nil when the post does not exist.
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context, params FilterPostsParams) ([]*model.Post, error)
	CountPosts(ctx context.Context, params FilterPostsParams) (int64, error)
	// UpdatePost applies params and reports whether a post matched id.
	UpdatePost(ctx context.Context, id string, params UpdatePostParams) (bool, error)
	// MarkPublished moves a draft to published. It matches drafts only, so a
	// post that is already published is reported as not matched.
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) (bool, error)
}

// FilterPostsParams defines the parameters for filtering posts.
// Nil fields are not filtered on.
type FilterPostsParams struct {
	Author *string
	State  *model.PostState
}

// UpdatePostParams defines the optional parameters for updating a post.
// Only the fields that are not nil will be updated.
type UpdatePostParams struct {
	Title       *string
	Subtitle    *string
	Description *string
	Category    *string
	Visibility  *string
	UpdatedAt   time.Time
}

// Empty reports whether no editable field is set.
func (p UpdatePostParams) Empty() bool {
	return p.Title == nil && p.Subtitle == nil && p.Description == nil &&
		p.Category == nil && p.Visibility == nil
}

const postCollection = "posts"

type postStoreRepository struct {
	posts *store.Collection[model.Post]
}

// NewPostRepository creates a post repository and ensures its indexes.
func NewPostRepository(ctx context.Context, s store.Store) (PostRepository, error) {
	posts := store.NewCollection[model.Post](s, postCollection)

	if err := posts.EnsureIndexes(ctx,
		store.Index{Field: "id", Unique: true},
		store.Index{Field: "author"},
		store.Index{Field: "state"},
	); err != nil {
		return nil, err
	}

	return &postStoreRepository{posts: posts}, nil
}

func (r *postStoreRepository) CreatePost(ctx context.Context, post *model.Post) error {
	return r.posts.Insert(ctx, post)
}

func (r *postStoreRepository) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, found, err := r.posts.FindOne(ctx, store.Filter{"id": id})
	if err != nil || !found {
		return nil, err
	}

	return post, nil
}

func (r *postStoreRepository) ListPosts(ctx context.Context, params FilterPostsParams) ([]*model.Post, error) {
	return r.posts.FindMany(ctx, params.filter())
}

func (r *postStoreRepository) CountPosts(ctx context.Context, params FilterPostsParams) (int64, error) {
	return r.posts.Count(ctx, params.filter())
}

func (r *postStoreRepository) UpdatePost(ctx context.Context, id string, params UpdatePostParams) (bool, error) {
	// Build update query
	set := store.Document{}
	if params.Title != nil {
		set["title"] = *params.Title
	}
	if params.Subtitle != nil {
		set["subtitle"] = *params.Subtitle
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Category != nil {
		set["category"] = *params.Category
	}
	if params.Visibility != nil {
		set["visibility"] = *params.Visibility
	}
	set["updated_at"] = params.UpdatedAt

	matched, err := r.posts.UpdateFields(ctx, store.Filter{"id": id}, set)
	if err != nil {
		return false, err
	}

	return matched > 0, nil
}

func (r *postStoreRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) (bool, error) {
	matched, err := r.posts.UpdateFields(
		ctx,
		store.Filter{"id": id, "state": string(model.PostStateDraft)},
		store.Document{
			"state":        string(model.PostStatePublished),
			"status":       string(model.PostStatePublished),
			"published_at": publishedAt,
			"updated_at":   publishedAt,
		},
	)
	if err != nil {
		return false, err
	}

	return matched > 0, nil
}

func (p FilterPostsParams) filter() store.Filter {
	filter := store.Filter{}
	if p.Author != nil {
		filter["author"] = *p.Author
	}
	if p.State != nil {
		filter["state"] = string(*p.State)
	}
	return filter
}
