package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
)

// fakeBlobs records uploads and deletes for the standalone upload route.
type fakeBlobs struct {
	puts    []string
	deletes []string
}

func (f *fakeBlobs) Put(ctx context.Context, data []byte, originalName, folder string) (*mediatx.UploadedBlob, error) {
	f.puts = append(f.puts, originalName)
	key := folder + "/" + originalName
	return &mediatx.UploadedBlob{URL: "https://blobs.test/" + key, ObjectKey: key}, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, objectKey string) error {
	f.deletes = append(f.deletes, objectKey)
	return nil
}

func multipartFile(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, h *UploadHandler, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	return rec, h.Upload(e.NewContext(req, rec))
}

func TestUpload(t *testing.T) {
	blobs := &fakeBlobs{}
	h := NewUploadHandler(blobs, "uploads", 1<<20)

	body, contentType := multipartFile(t, "file", "avatar.png", "image/png", []byte("img"))
	rec, err := doUpload(t, h, body, contentType)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"avatar.png"}, blobs.puts)

	var resp struct {
		URL       string `json:"url"`
		ObjectKey string `json:"object_key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "uploads/avatar.png", resp.ObjectKey)
	assert.NotEmpty(t, resp.URL)
}

func TestUploadRejectsNonImage(t *testing.T) {
	blobs := &fakeBlobs{}
	h := NewUploadHandler(blobs, "uploads", 1<<20)

	body, contentType := multipartFile(t, "file", "resume.pdf", "application/pdf", []byte("pdf"))
	_, err := doUpload(t, h, body, contentType)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Empty(t, blobs.puts, "a rejected file must never reach the blob store")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	blobs := &fakeBlobs{}
	h := NewUploadHandler(blobs, "uploads", 4)

	body, contentType := multipartFile(t, "file", "big.png", "image/png", []byte("too big"))
	_, err := doUpload(t, h, body, contentType)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Empty(t, blobs.puts)
}

func TestUploadNoFile(t *testing.T) {
	h := NewUploadHandler(&fakeBlobs{}, "uploads", 1<<20)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())
	_, err := doUpload(t, h, &buf, w.FormDataContentType())

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestDeleteUpload(t *testing.T) {
	blobs := &fakeBlobs{}
	h := NewUploadHandler(blobs, "uploads", 1<<20)
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodDelete, "/uploads?object_key=uploads%2Favatar.png", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Delete(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"uploads/avatar.png"}, blobs.deletes)

	req = httptest.NewRequest(http.MethodDelete, "/uploads", nil)
	err := h.Delete(e.NewContext(req, httptest.NewRecorder()))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
