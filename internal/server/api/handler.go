// Package api is the share server's HTTP surface: one upload endpoint and
// one resolve endpoint. The server keeps no database; a share exists
// exactly as long as its object does.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/karimrkhoury/ziplock/internal/logging"
	"github.com/karimrkhoury/ziplock/internal/server/storage"
)

// shareIDSize is the random byte count behind a share id; hex encoding
// doubles it to a ten-character id.
const shareIDSize = 5

// Config carries the handler's tunables.
type Config struct {
	MaxUploadSize int64
	LinkTTL       time.Duration
	PublicBaseURL string
}

// Handler carries the dependencies of the HTTP handlers.
type Handler struct {
	store  storage.ObjectStore
	signer *storage.LinkSigner
	log    logging.Logger
	cfg    Config
}

// NewHandler builds the handler set. signer may be nil when the backend
// presigns its own URLs (S3); the /download endpoint then answers 404.
func NewHandler(store storage.ObjectStore, signer *storage.LinkSigner, cfg Config, log logging.Logger) *Handler {
	return &Handler{store: store, signer: signer, cfg: cfg, log: log}
}

type uploadResponse struct {
	ShareID     string `json:"shareId"`
	DownloadURL string `json:"downloadUrl"`
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
