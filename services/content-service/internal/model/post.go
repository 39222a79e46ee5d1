package model

import (
	"errors"
	"fmt"
	"time"
)

// PostState is the lifecycle state of a post.
type PostState string

const (
	PostStateDraft     PostState = "draft"
	PostStatePublished PostState = "published"
)

// Valid reports whether s is a known lifecycle state.
func (s PostState) Valid() bool {
	return s == PostStateDraft || s == PostStatePublished
}

// Post represents a blog post. Drafts and published posts share this shape
// and differ only in State.
type Post struct {
	ID          string    `bson:"id"`
	Author      string    `bson:"author"`
	Category    string    `bson:"category"`
	Title       string    `bson:"title"`
	Subtitle    string    `bson:"subtitle"`
	Description string    `bson:"description"`
	Status      string    `bson:"status"`
	Visibility  string    `bson:"visibility"`
	State       PostState `bson:"state"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
	PublishedAt time.Time `bson:"published_at,omitempty"`
}

// Validate checks the invariants every stored post must satisfy.
func (p *Post) Validate() error {
	if p.ID == "" {
		return errors.New("post id is required")
	}
	if !p.State.Valid() {
		return fmt.Errorf("unknown post state %q", p.State)
	}
	return nil
}
