package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeReply   = "reply"
)

// Notification represents an activity notification stored in MongoDB
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID uint               `json:"recipient_id" bson:"recipient_id"`
	ActorID     uint               `json:"actor_id" bson:"actor_id"`
	Type        string             `json:"type" bson:"type"`
	PostID      uint               `json:"post_id,omitempty" bson:"post_id,omitempty"`
	CommentID   uint               `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
