package http

import (
	"errors"
	"net/http"

	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/internal/server/whisper"
	"github.com/quietlane/voicegate/pkg/httpx"
	"github.com/quietlane/voicegate/pkg/slogx"
)

// maxAudioUpload caps how much of a multipart body is buffered in memory
// before spilling to disk.
const maxAudioUpload = 32 << 20 // 32 MiB

type TranscribeHandler struct {
	Transcribe *service.TranscribeService
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func (h *TranscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "expected multipart form upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	text, err := h.Transcribe.Transcribe(r.Context(), user.ID, header.Filename, file)
	if err != nil {
		logger := slogx.FromContext(r.Context())
		switch {
		case errors.Is(err, whisper.ErrTimeout):
			logger.Warn("transcription timed out", "user_id", user.ID)
			httpx.WriteError(w, http.StatusGatewayTimeout, "transcription timed out")
		case errors.Is(err, whisper.ErrUnavailable), errors.Is(err, whisper.ErrServer):
			logger.Error("transcription backend failed", "error", err)
			httpx.WriteError(w, http.StatusBadGateway, "transcription service unavailable")
		default:
			logger.Error("transcription failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, transcribeResponse{Text: text})
}
