package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
)

// currentUserID returns the authenticated user's id stored by the JWT
// middleware.
func currentUserID(c echo.Context) uint {
	return c.Get("userID").(uint)
}

// coordinatorHTTPError maps a media coordinator error to the HTTP status
// contract: validation 400, authorization 403, missing post 404, upload or
// persistence failure 500.
func coordinatorHTTPError(err error) *echo.HTTPError {
	var (
		validationErr *mediatx.ValidationError
		authErr       *mediatx.AuthorizationError
		uploadErr     *mediatx.MediaUploadError
	)
	switch {
	case errors.Is(err, mediatx.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Msg)
	case errors.As(err, &authErr):
		return echo.NewHTTPError(http.StatusForbidden, authErr.Msg)
	case errors.As(err, &uploadErr):
		return echo.NewHTTPError(http.StatusInternalServerError, "Media upload failed")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save post")
	}
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// readMultipartFiles collects the uploaded files from the given multipart
// field, enforcing the per-file size limit. A request without a multipart
// body yields no files, which is how text-only posts arrive.
func readMultipartFiles(c echo.Context, field string, maxFileSize int64) ([]mediatx.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var files []mediatx.File
	for _, fh := range form.File[field] {
		if fh.Size > maxFileSize {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "File too large")
		}
		src, err := fh.Open()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
		}
		files = append(files, mediatx.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

// pagination reads skip/limit-style query params with defaults.
func pagination(c echo.Context, defaultLimit int) (offset, limit int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	return (page - 1) * limit, limit
}
