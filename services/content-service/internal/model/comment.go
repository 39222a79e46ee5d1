package model

import (
	"errors"
	"time"
)

// Comment represents a comment left on a post.
type Comment struct {
	ID        string    `bson:"id"`
	PostID    string    `bson:"post_id"`
	MadeBy    string    `bson:"made_by"`
	Content   string    `bson:"content"`
	LikeCount int       `bson:"like_count"`
	CreatedAt time.Time `bson:"created_at"`
}

// Validate checks the invariants every stored comment must satisfy.
func (c *Comment) Validate() error {
	if c.ID == "" {
		return errors.New("comment id is required")
	}
	if c.PostID == "" {
		return errors.New("comment post id is required")
	}
	return nil
}
