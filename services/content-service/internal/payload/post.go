package payload

import (
	"time"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
)

// CreatePostRequest is shared by posts and drafts. The author is taken from
// the bearer token.
type CreatePostRequest struct {
	Category    string `json:"category"    validate:"max=64"`
	Title       string `json:"title"       validate:"required,max=256"`
	Subtitle    string `json:"subtitle"    validate:"max=256"`
	Description string `json:"description"`
	Status      string `json:"status"      validate:"max=32"`
	Visibility  string `json:"visibility"  validate:"max=32"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title"       validate:"omitnil,min=1,max=256"`
	Subtitle    *string `json:"subtitle"    validate:"omitnil,max=256"`
	Description *string `json:"description"`
	Category    *string `json:"category"    validate:"omitnil,max=64"`
	Visibility  *string `json:"visibility"  validate:"omitnil,max=32"`
}

type PostResponse struct {
	ID          string     `json:"id"`
	Author      string     `json:"author"`
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Visibility  string     `json:"visibility"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func NewPostResponse(p *model.Post) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Author:      p.Author,
		Category:    p.Category,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Description: p.Description,
		Status:      p.Status,
		Visibility:  p.Visibility,
		State:       string(p.State),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if !p.PublishedAt.IsZero() {
		publishedAt := p.PublishedAt
		resp.PublishedAt = &publishedAt
	}
	return resp
}

func NewPostListResponse(posts []*model.Post) []PostResponse {
	resp := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, NewPostResponse(p))
	}
	return resp
}
