package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimrkhoury/ziplock/internal/common"
	"github.com/karimrkhoury/ziplock/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func TestUploadOK(t *testing.T) {
	var gotName, gotType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		gotName = hdr.Filename
		gotType = hdr.Header.Get("Content-Type")
		gotBody, err = io.ReadAll(f)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shareId":"ab12cd34ef","downloadUrl":"http://example.com/files/ab12cd34ef"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	var lastSent, lastTotal int64
	res, err := c.Upload(context.Background(), []byte("encrypted"), "ziplocked-files.zip", func(sent, total int64) {
		lastSent, lastTotal = sent, total
	})
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34ef", res.ShareID)
	assert.Equal(t, "http://example.com/files/ab12cd34ef", res.DownloadURL)
	assert.Equal(t, "ziplocked-files.zip", gotName)
	assert.Equal(t, "application/zip", gotType)
	assert.Equal(t, []byte("encrypted"), gotBody)
	assert.Equal(t, lastTotal, lastSent)
	assert.Greater(t, lastTotal, int64(0))
}

func TestUploadShareIDFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloadUrl":"http://example.com/files/deadbeef01"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	res, err := c.Upload(context.Background(), []byte("x"), "a.zip", nil)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef01", res.ShareID)
}

func TestUploadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.Upload(context.Background(), []byte("x"), "a.zip", nil)
	var ue *common.UploadError
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.TooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, ue.StatusCode)
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"bucket unavailable"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.Upload(context.Background(), []byte("x"), "a.zip", nil)
	var ue *common.UploadError
	require.ErrorAs(t, err, &ue)
	assert.False(t, ue.TooLarge)
	assert.Contains(t, ue.Error(), "bucket unavailable")
}

func TestResolveRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/ab12cd34ef", r.URL.Path)
		http.Redirect(w, r, "https://bucket.example.com/uploads/ab12cd34ef?sig=x", http.StatusFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	loc, err := c.Resolve(context.Background(), "ab12cd34ef")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/uploads/ab12cd34ef?sig=x", loc)
}

func TestResolveExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.Resolve(context.Background(), "gone")
	require.ErrorIs(t, err, common.ErrExpiredLink)
}

// A server failure while resolving must stay distinct from the expired
// outcome so callers can tell "your link is gone" from "try again".
func TestResolveServerErrorIsNotExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	_, err := c.Resolve(context.Background(), "any")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrExpiredLink))
}

func TestDownload(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/files/ab12cd34ef", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/signed", http.StatusFound)
	})
	mux.HandleFunc("/signed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("archive-bytes"))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	got, err := c.Download(context.Background(), "ab12cd34ef")
	require.NoError(t, err)
	assert.Equal(t, []byte("archive-bytes"), got)
}

func TestShareURL(t *testing.T) {
	c := NewClient("http://localhost:8080/", testLogger())
	assert.Equal(t, "http://localhost:8080/files/ab12cd34ef", c.ShareURL("ab12cd34ef"))
}
