package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shahriar-rahim/socialite/backend/internal/models"
	"github.com/shahriar-rahim/socialite/backend/internal/repositories"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository    repositories.LikeRepository
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	replyRepository   repositories.ReplyRepository
	notificationRepo  repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	replyRepo repositories.ReplyRepository,
	notificationRepo repositories.NotificationRepository,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:    likeRepo,
		postRepository:    postRepo,
		commentRepository: commentRepo,
		replyRepository:   replyRepo,
		notificationRepo:  notificationRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes", h.ToggleLike)
}

// ToggleLike likes the named target, or removes the like if it already
// exists. Exactly one of post_id, comment_id, reply_id must be set.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID := currentUserID(c)

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	targets := 0
	for _, id := range []*uint{req.PostID, req.CommentID, req.ReplyID} {
		if id != nil {
			targets++
		}
	}
	if targets != 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Provide exactly one target: post_id, comment_id, or reply_id")
	}

	recipientID, postID, commentID, err := h.resolveTarget(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	existing, err := h.likeRepository.FindLike(userID, req.PostID, req.CommentID, req.ReplyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if existing != nil {
		if err := h.likeRepository.DeleteLike(existing.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"liked": false, "message": "Like removed"})
	}

	like := &models.Like{
		UserID:    userID,
		PostID:    req.PostID,
		CommentID: req.CommentID,
		ReplyID:   req.ReplyID,
	}
	if err := h.likeRepository.CreateLike(like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notify(recipientID, userID, postID, commentID)

	return c.JSON(http.StatusOK, echo.Map{"liked": true, "message": "Liked successfully"})
}

// resolveTarget verifies the liked resource exists and returns its owner
// plus the post/comment references carried on the notification.
func (h *LikeHandler) resolveTarget(ctx context.Context, req *models.ToggleLikeRequest) (recipientID, postID, commentID uint, err error) {
	switch {
	case req.PostID != nil:
		post, err := h.postRepository.GetPostWithMedia(ctx, *req.PostID)
		if err != nil {
			return 0, 0, 0, coordinatorHTTPError(err)
		}
		return post.AuthorID, post.ID, 0, nil
	case req.CommentID != nil:
		comment, err := h.commentRepository.GetCommentByID(*req.CommentID)
		if err != nil {
			return 0, 0, 0, echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return comment.AuthorID, comment.PostID, comment.ID, nil
	default:
		reply, err := h.replyRepository.GetReplyByID(*req.ReplyID)
		if err != nil {
			return 0, 0, 0, echo.NewHTTPError(http.StatusNotFound, "Reply not found")
		}
		return reply.AuthorID, 0, reply.CommentID, nil
	}
}

func (h *LikeHandler) notify(recipientID, actorID uint, postID, commentID uint) {
	if recipientID == actorID {
		return
	}
	go func() {
		n := &models.Notification{
			RecipientID: recipientID,
			ActorID:     actorID,
			Type:        models.NotificationTypeLike,
			PostID:      postID,
			CommentID:   commentID,
		}
		if err := h.notificationRepo.CreateNotification(context.Background(), n); err != nil {
			log.Printf("failed to create like notification: %v", err)
		}
	}()
}
