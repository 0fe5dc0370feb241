package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimrkhoury/ziplock/internal/logging"
	"github.com/karimrkhoury/ziplock/internal/server/storage"
)

func newTestHandler(t *testing.T, maxUpload int64) (*Handler, http.Handler) {
	t.Helper()
	signer, err := storage.NewLinkSigner("test-secret")
	require.NoError(t, err)
	store, err := storage.NewDiskStore(t.TempDir(), "http://localhost:8080", signer)
	require.NoError(t, err)

	h := NewHandler(store, signer, Config{
		MaxUploadSize: maxUpload,
		LinkTTL:       15 * time.Minute,
		PublicBaseURL: "http://localhost:8080",
	}, logging.NewTextLogger(io.Discard, slog.LevelError))
	return h, h.Routes()
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAndResolve(t *testing.T) {
	_, router := newTestHandler(t, 1<<20)

	body, contentType := multipartBody(t, "file", "ziplocked-files.zip", []byte("encrypted-blob"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.ShareID, 10)
	assert.Equal(t, "http://localhost:8080/files/"+resp.ShareID, resp.DownloadURL)

	// A live share redirects to a signed URL.
	req = httptest.NewRequest(http.MethodGet, "/files/"+resp.ShareID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	require.Contains(t, loc, "/download?token=")

	// The signed URL serves the stored bytes.
	req = httptest.NewRequest(http.MethodGet, loc, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "encrypted-blob", rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
}

func TestResolveUnknownShareIs404(t *testing.T) {
	_, router := newTestHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/files/nosuchshare", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestUploadTooLargeIs413(t *testing.T) {
	_, router := newTestHandler(t, 64)

	body, contentType := multipartBody(t, "file", "big.zip", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadMissingFileFieldIs400(t *testing.T) {
	_, router := newTestHandler(t, 1<<20)

	body, contentType := multipartBody(t, "wrong", "a.zip", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadBadToken(t *testing.T) {
	_, router := newTestHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/download?token=garbage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthz(t *testing.T) {
	_, router := newTestHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestUploadNonMultipartIs400(t *testing.T) {
	_, router := newTestHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
