package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shahriar-rahim/socialite/backend/internal/cache"
	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
	"github.com/shahriar-rahim/socialite/backend/internal/models"
	"github.com/shahriar-rahim/socialite/backend/internal/repositories"
)

// PostHandler handles HTTP requests related to posts. All mutations go
// through the media transaction coordinator; this handler only parses the
// request and shapes the response.
type PostHandler struct {
	coordinator    *mediatx.Coordinator
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	likeRepository repositories.LikeRepository
	commentRepo    repositories.CommentRepository
	feedCache      *cache.FeedCache
	maxFileSize    int64
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	coordinator *mediatx.Coordinator,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	feedCache *cache.FeedCache,
	maxFileSize int64,
) *PostHandler {
	return &PostHandler{
		coordinator:    coordinator,
		postRepository: postRepo,
		userRepository: userRepo,
		likeRepository: likeRepo,
		commentRepo:    commentRepo,
		feedCache:      feedCache,
		maxFileSize:    maxFileSize,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetFeed)
	g.PUT("/posts/:id", h.EditPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/posts/:id/likes", h.GetPostLikes)
}

// CreatePost creates a new post with up to 4 image attachments
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := currentUserID(c)

	files, err := readMultipartFiles(c, "files", h.maxFileSize)
	if err != nil {
		return err
	}

	content := c.FormValue("content")
	isPrivate := c.FormValue("is_private") == "true"

	post, err := h.coordinator.CreatePost(c.Request().Context(), userID, content, files, isPrivate)
	if err != nil {
		return coordinatorHTTPError(err)
	}

	h.invalidateFeed(c)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Post created", "post": post})
}

// EditPost updates a post's content, visibility and media set. Media rows
// not named in keep_media_ids are replaced; new files are appended.
func (h *PostHandler) EditPost(c echo.Context) error {
	userID := currentUserID(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	files, err := readMultipartFiles(c, "files", h.maxFileSize)
	if err != nil {
		return err
	}

	keepIDs, err := keepMediaIDs(c)
	if err != nil {
		return err
	}

	content := c.FormValue("content")
	isPrivate := c.FormValue("is_private") == "true"

	post, err := h.coordinator.EditPost(c.Request().Context(), postID, userID, content, files, keepIDs, isPrivate)
	if err != nil {
		return coordinatorHTTPError(err)
	}

	h.invalidateFeed(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Post updated", "post": post})
}

// DeletePost deletes a post, its rows and its blobs
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := currentUserID(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.coordinator.DeletePost(c.Request().Context(), postID, userID); err != nil {
		return coordinatorHTTPError(err)
	}

	h.invalidateFeed(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// GetFeed returns the public feed, newest first, hydrated with author and
// counts. Pages are served from the Redis cache when possible.
func (h *PostHandler) GetFeed(c echo.Context) error {
	offset, limit := pagination(c, 10)
	ctx := c.Request().Context()

	if cached, err := h.feedCache.Get(ctx, offset, limit); err == nil {
		return c.JSON(http.StatusOK, echo.Map{"posts": cached})
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("feed cache read failed: %v", err)
	}

	posts, err := h.postRepository.GetPublicPosts(ctx, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve posts")
	}

	feed := make([]models.FeedPost, 0, len(posts))
	for _, post := range posts {
		item := models.FeedPost{Post: post}

		if author, err := h.userRepository.GetUserByID(post.AuthorID); err == nil {
			item.Author = author.Public()
		}
		if n, err := h.likeRepository.CountForPost(post.ID); err == nil {
			item.LikesCount = n
		}
		if n, err := h.commentRepo.CountByPostID(post.ID); err == nil {
			item.CommentsCount = n
		}
		feed = append(feed, item)
	}

	if err := h.feedCache.Set(ctx, offset, limit, feed); err != nil {
		log.Printf("feed cache write failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": feed})
}

// GetPostLikes lists the users who liked a post
func (h *PostHandler) GetPostLikes(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.postRepository.GetPostWithMedia(c.Request().Context(), postID); err != nil {
		return coordinatorHTTPError(err)
	}

	likes, err := h.likeRepository.GetLikesByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post likes")
	}

	users := make([]models.PublicUser, 0, len(likes))
	for _, like := range likes {
		if user, err := h.userRepository.GetUserByID(like.UserID); err == nil {
			users = append(users, user.Public())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"total": len(users), "users": users})
}

// invalidateFeed drops the cached feed pages after any post write. Cache
// failures only shorten the cache's usefulness, never the request.
func (h *PostHandler) invalidateFeed(c echo.Context) {
	if err := h.feedCache.Invalidate(c.Request().Context()); err != nil {
		log.Printf("feed cache invalidation failed: %v", err)
	}
}

// keepMediaIDs parses the repeatable keep_media_ids form field on edits.
func keepMediaIDs(c echo.Context) ([]uint, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var ids []uint
	for _, raw := range form.Value["keep_media_ids"] {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid keep_media_ids value")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
