package payload

import (
	"time"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
)

// CreateCommentRequest may carry a post_id, but the post id in the path is
// the one stored.
type CreateCommentRequest struct {
	PostID  string `json:"post_id"`
	Content string `json:"content" validate:"required,max=4096"`
	Likes   int    `json:"likes"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	MadeBy    string    `json:"made_by"`
	Content   string    `json:"content"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCommentResponse(c *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		MadeBy:    c.MadeBy,
		Content:   c.Content,
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt,
	}
}

func NewCommentListResponse(comments []*model.Comment) []CommentResponse {
	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, NewCommentResponse(c))
	}
	return resp
}
