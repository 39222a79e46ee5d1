package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/repository"
)

// PostUsecase defines the business logic for posts and drafts.
type PostUsecase interface {
	CreatePost(ctx context.Context, state model.PostState, params CreatePostParams) (*model.Post, error)
	GetAllPosts(ctx context.Context) ([]*model.Post, error)
	// GetPost returns a published post, or a draft when viewer is its author.
	GetPost(ctx context.Context, id, viewer string) (*model.Post, error)
	// GetPostsByAuthor and CountPostsByAuthor see published posts only.
	GetPostsByAuthor(ctx context.Context, username string) ([]*model.Post, error)
	GetDrafts(ctx context.Context, username string) ([]*model.Post, error)
	CountPostsByAuthor(ctx context.Context, username string) (int64, error)
	EditPost(ctx context.Context, id string, params EditPostParams) (*model.Post, error)
	Publish(ctx context.Context, id, actor string) (*model.Post, error)
}

// CreatePostParams defines the caller supplied fields of a new post.
type CreatePostParams struct {
	Author      string
	Category    string
	Title       string
	Subtitle    string
	Description string
	Status      string
	Visibility  string
}

// EditPostParams defines a partial update. Nil fields are left untouched.
// When Actor is set, only the post's author may edit it.
type EditPostParams struct {
	Actor       string
	Title       *string
	Subtitle    *string
	Description *string
	Category    *string
	Visibility  *string
}

// PostCache caches encoded posts by key.
type PostCache interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

const postCacheKeyPrefix = "post:"

type postUsecase struct {
	postRepo repository.PostRepository
	cache    PostCache
	cacheTTL time.Duration
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewPostUsecase creates a new PostUsecase. cache may be nil.
func NewPostUsecase(
	postRepo repository.PostRepository,
	cache PostCache,
	cacheTTL time.Duration,
	logger *zerolog.Logger,
) PostUsecase {
	return &postUsecase{
		postRepo: postRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *postUsecase) CreatePost(ctx context.Context, state model.PostState, params CreatePostParams) (*model.Post, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("%w: unknown post state %q", ErrInvalidInput, state)
	}

	now := u.timestamp()
	post := &model.Post{
		ID:          uuid.NewString(),
		Author:      params.Author,
		Category:    params.Category,
		Title:       params.Title,
		Subtitle:    params.Subtitle,
		Description: params.Description,
		Status:      params.Status,
		Visibility:  params.Visibility,
		State:       state,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if state == model.PostStatePublished {
		post.PublishedAt = now
	}

	if err := u.postRepo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (u *postUsecase) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	published := model.PostStatePublished

	posts, err := u.postRepo.ListPosts(ctx, repository.FilterPostsParams{State: &published})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (u *postUsecase) GetPost(ctx context.Context, id, viewer string) (*model.Post, error) {
	post := u.cachedPost(ctx, id)
	if post == nil {
		var err error
		post, err = u.postRepo.GetPost(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get post: %w", err)
		}
		if post == nil {
			return nil, ErrPostNotFound
		}

		u.cachePost(ctx, post)
	}

	// Drafts are hidden from everyone but their author.
	if post.State != model.PostStatePublished && (viewer == "" || viewer != post.Author) {
		return nil, ErrPostNotFound
	}

	return post, nil
}

func (u *postUsecase) GetPostsByAuthor(ctx context.Context, username string) ([]*model.Post, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}

	published := model.PostStatePublished

	posts, err := u.postRepo.ListPosts(ctx, repository.FilterPostsParams{Author: &username, State: &published})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}

	return posts, nil
}

func (u *postUsecase) GetDrafts(ctx context.Context, username string) ([]*model.Post, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}

	draft := model.PostStateDraft

	posts, err := u.postRepo.ListPosts(ctx, repository.FilterPostsParams{Author: &username, State: &draft})
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	return posts, nil
}

func (u *postUsecase) CountPostsByAuthor(ctx context.Context, username string) (int64, error) {
	if username == "" {
		return 0, ErrUsernameRequired
	}

	published := model.PostStatePublished

	n, err := u.postRepo.CountPosts(ctx, repository.FilterPostsParams{Author: &username, State: &published})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return n, nil
}

func (u *postUsecase) EditPost(ctx context.Context, id string, params EditPostParams) (*model.Post, error) {
	update := repository.UpdatePostParams{
		Title:       params.Title,
		Subtitle:    params.Subtitle,
		Description: params.Description,
		Category:    params.Category,
		Visibility:  params.Visibility,
		UpdatedAt:   u.timestamp(),
	}
	if update.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	if params.Actor != "" {
		if _, err := u.ownedPost(ctx, id, params.Actor); err != nil {
			return nil, err
		}
	}

	// Evicted before and after the write: a reader may cache the old row
	// while the update is in flight.
	u.evictPost(ctx, id)

	matched, err := u.postRepo.UpdatePost(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if !matched {
		return nil, ErrPostNotFound
	}

	u.evictPost(ctx, id)

	return u.reload(ctx, id)
}

func (u *postUsecase) Publish(ctx context.Context, id, actor string) (*model.Post, error) {
	var (
		post *model.Post
		err  error
	)

	if actor != "" {
		post, err = u.ownedPost(ctx, id, actor)
	} else {
		post, err = u.postRepo.GetPost(ctx, id)
		if err == nil && post == nil {
			err = ErrPostNotFound
		}
	}
	if err != nil {
		return nil, err
	}

	if post.State == model.PostStatePublished {
		return post, nil
	}

	u.evictPost(ctx, id)

	// A concurrent publish can win the race; either way the post ends up
	// published, so the match result is not an error.
	if _, err := u.postRepo.MarkPublished(ctx, id, u.timestamp()); err != nil {
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}

	u.evictPost(ctx, id)

	return u.reload(ctx, id)
}

func (u *postUsecase) ownedPost(ctx context.Context, id, actor string) (*model.Post, error) {
	post, err := u.postRepo.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.Author != actor {
		return nil, ErrForbidden
	}

	return post, nil
}

func (u *postUsecase) reload(ctx context.Context, id string) (*model.Post, error) {
	post, err := u.postRepo.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	return post, nil
}

// timestamp returns the current time at the precision the store keeps.
func (u *postUsecase) timestamp() time.Time {
	return u.now().UTC().Truncate(time.Millisecond)
}

func (u *postUsecase) cachedPost(ctx context.Context, id string) *model.Post {
	if u.cache == nil {
		return nil
	}

	data := u.cache.Get(ctx, postCacheKeyPrefix+id)
	if data == nil {
		return nil
	}

	var post model.Post
	if err := bson.Unmarshal(data, &post); err != nil {
		u.logger.Warn().Err(err).Str("post_id", id).Msg("discarding undecodable cached post")
		u.cache.Delete(ctx, postCacheKeyPrefix+id)
		return nil
	}

	return &post
}

func (u *postUsecase) cachePost(ctx context.Context, post *model.Post) {
	if u.cache == nil {
		return
	}

	data, err := bson.Marshal(post)
	if err != nil {
		u.logger.Warn().Err(err).Str("post_id", post.ID).Msg("failed to encode post for cache")
		return
	}

	u.cache.Set(ctx, postCacheKeyPrefix+post.ID, data, u.cacheTTL)
}

func (u *postUsecase) evictPost(ctx context.Context, id string) {
	if u.cache == nil {
		return
	}
	u.cache.Delete(ctx, postCacheKeyPrefix+id)
}
