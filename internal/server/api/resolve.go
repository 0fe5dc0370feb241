package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karimrkhoury/ziplock/internal/server/storage"
)

// handleResolve redirects a live share to its signed download URL. An
// absent object is the ordinary expired case and answers 404; everything
// else is a 500, the two must never blur.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shareID := chi.URLParam(r, "shareID")
	key := storage.KeyPrefix + shareID

	ok, err := h.store.Exists(ctx, key)
	if err != nil {
		h.log.Error(ctx, "checking share failed", "key", key, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "checking file failed")
		return
	}
	if !ok {
		h.respondWithError(w, http.StatusNotFound, "file not found or expired")
		return
	}

	signed, err := h.store.SignedGetURL(ctx, key, h.cfg.LinkTTL)
	if err != nil {
		h.log.Error(ctx, "signing download url failed", "key", key, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "signing url failed")
		return
	}

	http.Redirect(w, r, signed, http.StatusFound)
}

// handleDownload serves disk-backed objects through the signed token the
// resolve endpoint handed out.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.signer == nil {
		h.respondWithError(w, http.StatusNotFound, "not found")
		return
	}

	key, err := h.signer.Verify(r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidToken) {
			h.respondWithError(w, http.StatusForbidden, "invalid or expired token")
			return
		}
		h.respondWithError(w, http.StatusInternalServerError, "verifying token failed")
		return
	}

	rc, err := h.store.Open(ctx, key)
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, "file not found or expired")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="ziplocked-files.zip"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn(ctx, "streaming download interrupted", "key", key, "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
