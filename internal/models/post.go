package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	SenderID  uuid.UUID
	Title     string
	Content   string
}

type PostUpdate struct {
	Title   *string
	Content *string
}

// Zero value lists every post
type PostFilter struct {
	SenderID uuid.UUID
}

type Comment struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	PostID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
}
