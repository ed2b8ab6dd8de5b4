package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shahriar-rahim/socialite/backend/internal/models"
	"github.com/shahriar-rahim/socialite/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	replyRepository   repositories.ReplyRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	notificationRepo  repositories.NotificationRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	replyRepo repositories.ReplyRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		replyRepository:   replyRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		notificationRepo:  notificationRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := currentUserID(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Verify post exists
	post, err := h.postRepository.GetPostWithMedia(c.Request().Context(), postID)
	if err != nil {
		return coordinatorHTTPError(err)
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: userID,
		Content:  req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notify(post.AuthorID, userID, models.NotificationTypeComment, postID, comment.ID)

	return c.JSON(http.StatusCreated, echo.Map{"comment": comment})
}

// GetCommentsByPostID retrieves a page of comments on a post, with their
// authors and replies
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.postRepository.GetPostWithMedia(c.Request().Context(), postID); err != nil {
		return coordinatorHTTPError(err)
	}

	offset, limit := pagination(c, 10)
	comments, total, err := h.commentRepository.GetCommentsByPostID(postID, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments")
	}

	hydrated := make([]models.CommentWithAuthor, 0, len(comments))
	for _, comment := range comments {
		item := models.CommentWithAuthor{Comment: comment, Replies: []models.ReplyWithAuthor{}}
		if author, err := h.userRepository.GetUserByID(comment.AuthorID); err == nil {
			item.Author = author.Public()
		}

		replies, err := h.replyRepository.GetRepliesByCommentID(comment.ID)
		if err == nil {
			for _, reply := range replies {
				replyItem := models.ReplyWithAuthor{Reply: reply}
				if author, err := h.userRepository.GetUserByID(reply.AuthorID); err == nil {
					replyItem.Author = author.Public()
				}
				item.Replies = append(item.Replies, replyItem)
			}
		}
		hydrated = append(hydrated, item)
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "comments": hydrated})
}

// UpdateComment updates an existing comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := currentUserID(c)
	commentID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own comments")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"comment": comment})
}

// DeleteComment deletes a comment together with its replies and likes
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := currentUserID(c)
	commentID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}

// notify records an activity notification, skipping self-notification.
// Notification delivery is best-effort and never fails the request.
func (h *CommentHandler) notify(recipientID, actorID uint, kind string, postID, commentID uint) {
	if recipientID == actorID {
		return
	}
	go func() {
		n := &models.Notification{
			RecipientID: recipientID,
			ActorID:     actorID,
			Type:        kind,
			PostID:      postID,
			CommentID:   commentID,
		}
		if err := h.notificationRepo.CreateNotification(context.Background(), n); err != nil {
			log.Printf("failed to create %s notification: %v", kind, err)
		}
	}()
}
