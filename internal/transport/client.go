// Package transport is the client side of the share service's HTTP API:
// multipart upload with progress events, share resolution, and archive
// download. A 404 on resolve means the share expired; that outcome is
// routed as common.ErrExpiredLink, never as a generic failure.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/karimrkhoury/ziplock/internal/common"
	"github.com/karimrkhoury/ziplock/internal/iox"
	"github.com/karimrkhoury/ziplock/internal/logging"
)

// UploadProgressFunc receives the running count of request body bytes sent
// and the body's total size.
type UploadProgressFunc func(sent, total int64)

// UploadResult is the server's answer to a successful upload.
type UploadResult struct {
	ShareID     string
	DownloadURL string
}

type uploadResponse struct {
	ShareID     string `json:"shareId"`
	DownloadURL string `json:"downloadUrl"`
	Error       string `json:"error"`
}

// Client talks to one share server.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

func NewClient(baseURL string, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Minute,
			// Redirects are handled explicitly in Resolve.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}
}

// Upload posts the encrypted archive as the single multipart file field.
// Progress is reported as the body is consumed by the HTTP transport.
func (c *Client) Upload(ctx context.Context, blob []byte, filename string, onProgress UploadProgressFunc) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	hdr.Set("Content-Type", "application/zip")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, &common.UploadError{Err: err}
	}
	if _, err := part.Write(blob); err != nil {
		return nil, &common.UploadError{Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &common.UploadError{Err: err}
	}

	total := int64(body.Len())
	var src io.Reader = &body
	if onProgress != nil {
		src = &iox.CountingReader{R: src, OnRead: func(sent int64) { onProgress(sent, total) }}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", src)
	if err != nil {
		return nil, &common.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = total

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &common.UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return nil, &common.UploadError{StatusCode: resp.StatusCode, TooLarge: true, Err: fmt.Errorf("server limit exceeded")}
	}
	if resp.StatusCode != http.StatusOK {
		var er uploadResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		msg := er.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, &common.UploadError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, &common.UploadError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	res := &UploadResult{ShareID: ur.ShareID, DownloadURL: ur.DownloadURL}
	if res.ShareID == "" && res.DownloadURL != "" {
		// Older servers answer with a download URL only; the share id is
		// its last path segment.
		res.ShareID = lastPathSegment(res.DownloadURL)
	}
	if res.ShareID == "" {
		return nil, &common.UploadError{Err: fmt.Errorf("response carries neither shareId nor downloadUrl")}
	}
	return res, nil
}

// Resolve asks the server for the signed download URL of a share.
// A 404 is the expected "expired" outcome and maps to ErrExpiredLink.
func (c *Client) Resolve(ctx context.Context, shareID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/"+url.PathEscape(shareID), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", common.ErrExpiredLink
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		// Location resolves relative targets against the request URL.
		loc, err := resp.Location()
		if err != nil {
			return "", fmt.Errorf("redirect without location")
		}
		return loc.String(), nil
	default:
		return "", fmt.Errorf("unexpected status %d resolving share", resp.StatusCode)
	}
}

// Download resolves a share and fetches the archive bytes from the signed
// URL it points at.
func (c *Client) Download(ctx context.Context, shareID string) ([]byte, error) {
	signed, err := c.Resolve(ctx, shareID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, common.ErrExpiredLink
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching archive", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ShareURL renders the public link for a share id.
func (c *Client) ShareURL(shareID string) string {
	return c.baseURL + "/files/" + url.PathEscape(shareID)
}

func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	return parts[len(parts)-1]
}
