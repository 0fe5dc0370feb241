package api

import (
	"errors"
	"net/http"

	"github.com/karimrkhoury/ziplock/internal/common"
	"github.com/karimrkhoury/ziplock/internal/server/storage"
)

// handleUpload accepts one multipart "file" field, stores it under a
// fresh share id and answers with the id and its public link. The body
// is hard-capped; exceeding it ends in 413.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.respondWithError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	shareID, err := common.RandToken(shareIDSize)
	if err != nil {
		h.log.Error(ctx, "generating share id failed", "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "storing file failed")
		return
	}
	key := storage.KeyPrefix + shareID

	if err := h.store.Put(ctx, key, file, header.Size); err != nil {
		h.log.Error(ctx, "storing upload failed", "key", key, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "storing file failed")
		return
	}

	h.log.Info(ctx, "upload stored", "share_id", shareID, "size", header.Size, "filename", header.Filename)

	h.respondWithJSON(w, http.StatusOK, uploadResponse{
		ShareID:     shareID,
		DownloadURL: h.cfg.PublicBaseURL + "/files/" + shareID,
	})
}
