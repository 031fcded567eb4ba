package transcribe

import (
	"context"

	"github.com/nguyentantai21042004/vidscribe/internal/acquire"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Client submits an audio artifact to the remote speech-to-text provider
// and returns the ordered, timestamped transcript segments.
type Client interface {
	Transcribe(ctx context.Context, artifact *acquire.Artifact, progress domain.ProgressFunc) ([]domain.TranscriptSegment, error)
}
