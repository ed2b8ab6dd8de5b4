package models

import "gorm.io/gorm"

// Comment represents a top-level comment on a post
type Comment struct {
	gorm.Model
	PostID   uint   `json:"post_id" gorm:"index"`
	AuthorID uint   `json:"author_id" gorm:"index"`
	Content  string `json:"content"`
}

// Reply represents a reply to a comment
type Reply struct {
	gorm.Model
	CommentID uint   `json:"comment_id" gorm:"index"`
	AuthorID  uint   `json:"author_id" gorm:"index"`
	Content   string `json:"content"`
}

// CommentWithAuthor pairs a comment with its author and nested replies for
// read endpoints.
type CommentWithAuthor struct {
	Comment
	Author  PublicUser        `json:"author"`
	Replies []ReplyWithAuthor `json:"replies"`
}

// ReplyWithAuthor pairs a reply with its author for read endpoints.
type ReplyWithAuthor struct {
	Reply
	Author PublicUser `json:"author"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CreateReplyRequest defines the request body for replying to a comment
type CreateReplyRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateReplyRequest defines the request body for updating an existing reply
type UpdateReplyRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
