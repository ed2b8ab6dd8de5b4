package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
)

// UploadHandler serves standalone blob uploads outside the post flow, for
// clients that stage media (e.g. profile pictures) before using it.
type UploadHandler struct {
	blobs       mediatx.BlobStore
	folder      string
	maxFileSize int64
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(blobs mediatx.BlobStore, folder string, maxFileSize int64) *UploadHandler {
	return &UploadHandler{blobs: blobs, folder: folder, maxFileSize: maxFileSize}
}

// RegisterUploadRoutes registers upload-related routes
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/uploads", h.Upload)
	g.DELETE("/uploads", h.Delete)
}

// Upload stores a single file and returns its public URL and object key
func (h *UploadHandler) Upload(c echo.Context) error {
	files, err := readMultipartFiles(c, "file", h.maxFileSize)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	file := files[0]
	if !strings.HasPrefix(file.ContentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "Only image files are allowed")
	}

	blob, err := h.blobs.Put(c.Request().Context(), file.Data, file.Name, h.folder)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": blob.URL, "object_key": blob.ObjectKey})
}

// Delete removes a previously uploaded blob by its object key
func (h *UploadHandler) Delete(c echo.Context) error {
	objectKey := c.QueryParam("object_key")
	if objectKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "object_key is required")
	}

	if err := h.blobs.Delete(c.Request().Context(), objectKey); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Delete failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "File deleted successfully"})
}
