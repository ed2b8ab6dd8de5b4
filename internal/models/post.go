package models

import "time"

// Post represents a feed post. A post must carry non-null content or at
// least one media row; the media transaction coordinator enforces that
// invariant on every write.
type Post struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	AuthorID  uint        `json:"author_id" gorm:"index;not null"` // Immutable after creation
	Content   *string     `json:"content"`
	IsPrivate bool        `json:"is_private"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Media     []PostMedia `json:"media" gorm:"foreignKey:PostID"`
}

// PostMedia is one image attached to a post. Rows are created and deleted
// only inside a coordinator transaction, never directly by a client.
// ObjectKey is the blob store deletion handle, persisted alongside the URL
// so cleanup never has to parse the URL back apart.
type PostMedia struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	URL       string    `json:"url" gorm:"not null"`
	ObjectKey string    `json:"-" gorm:"not null"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostMedia) TableName() string { return "post_media" }

// FeedPost is a hydrated post as returned by the public feed.
type FeedPost struct {
	Post
	Author        PublicUser `json:"author"`
	LikesCount    int64      `json:"likes_count"`
	CommentsCount int64      `json:"comments_count"`
}
