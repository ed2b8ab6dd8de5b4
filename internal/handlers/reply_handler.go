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

// ReplyHandler handles HTTP requests related to replies
type ReplyHandler struct {
	replyRepository   repositories.ReplyRepository
	commentRepository repositories.CommentRepository
	userRepository    repositories.UserRepository
	notificationRepo  repositories.NotificationRepository
}

// NewReplyHandler creates a new ReplyHandler
func NewReplyHandler(
	replyRepo repositories.ReplyRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
) *ReplyHandler {
	return &ReplyHandler{
		replyRepository:   replyRepo,
		commentRepository: commentRepo,
		userRepository:    userRepo,
		notificationRepo:  notificationRepo,
	}
}

// RegisterReplyRoutes registers reply-related routes
func (h *ReplyHandler) RegisterReplyRoutes(g *echo.Group) {
	g.POST("/comments/:id/replies", h.CreateReply)
	g.GET("/comments/:id/replies", h.GetRepliesByCommentID)
	g.PUT("/replies/:id", h.UpdateReply)
	g.DELETE("/replies/:id", h.DeleteReply)
}

// CreateReply creates a reply to a comment
func (h *ReplyHandler) CreateReply(c echo.Context) error {
	userID := currentUserID(c)
	commentID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateReplyRequest
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

	reply := &models.Reply{
		CommentID: commentID,
		AuthorID:  userID,
		Content:   req.Content,
	}
	if err := h.replyRepository.CreateReply(reply); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notify(comment.AuthorID, userID, comment.PostID, commentID)

	return c.JSON(http.StatusCreated, echo.Map{"reply": reply})
}

// GetRepliesByCommentID retrieves all replies for a comment, oldest first
func (h *ReplyHandler) GetRepliesByCommentID(c echo.Context) error {
	commentID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.commentRepository.GetCommentByID(commentID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	replies, err := h.replyRepository.GetRepliesByCommentID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch replies")
	}

	hydrated := make([]models.ReplyWithAuthor, 0, len(replies))
	for _, reply := range replies {
		item := models.ReplyWithAuthor{Reply: reply}
		if author, err := h.userRepository.GetUserByID(reply.AuthorID); err == nil {
			item.Author = author.Public()
		}
		hydrated = append(hydrated, item)
	}

	return c.JSON(http.StatusOK, echo.Map{"replies": hydrated})
}

// UpdateReply updates an existing reply
func (h *ReplyHandler) UpdateReply(c echo.Context) error {
	userID := currentUserID(c)
	replyID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return err
	}

	reply, err := h.replyRepository.GetReplyByID(replyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
	}
	if reply.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own replies")
	}

	reply.Content = req.Content
	if err := h.replyRepository.UpdateReply(reply); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}

// DeleteReply deletes a reply
func (h *ReplyHandler) DeleteReply(c echo.Context) error {
	userID := currentUserID(c)
	replyID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	reply, err := h.replyRepository.GetReplyByID(replyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
	}
	if reply.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own replies")
	}

	if err := h.replyRepository.DeleteReply(replyID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Reply deleted successfully"})
}

func (h *ReplyHandler) notify(recipientID, actorID uint, postID, commentID uint) {
	if recipientID == actorID {
		return
	}
	go func() {
		n := &models.Notification{
			RecipientID: recipientID,
			ActorID:     actorID,
			Type:        models.NotificationTypeReply,
			PostID:      postID,
			CommentID:   commentID,
		}
		if err := h.notificationRepo.CreateNotification(context.Background(), n); err != nil {
			log.Printf("failed to create reply notification: %v", err)
		}
	}()
}
