package service

import (
	"context"
	"io"

	"github.com/quietlane/voicegate/internal/server/whisper"
	"github.com/quietlane/voicegate/pkg/slogx"
)

// TranscribeService forwards audio to the whisper backend and post-processes
// the transcript with the caller's dictionaries. Failures from the backend
// propagate to the caller; nothing is retried here.
type TranscribeService struct {
	Whisper    *whisper.Client
	Dictionary *DictionaryService
}

// Transcribe returns the transcript for one audio upload with global and
// per-user replacements applied.
func (s *TranscribeService) Transcribe(ctx context.Context, userID int64, filename string, audio io.Reader) (string, error) {
	text, err := s.Whisper.Transcribe(ctx, filename, audio)
	if err != nil {
		slogx.FromContext(ctx).Warn("transcription failed", "error", err)
		return "", err
	}

	return s.Dictionary.ApplyReplacements(ctx, userID, text)
}
