package acquire

import (
	"context"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Acquirer resolves a canonical video identifier into a downloaded audio
// artifact plus the video's public metadata.
type Acquirer interface {
	Acquire(ctx context.Context, videoID string, progress domain.ProgressFunc) (*Artifact, *domain.VideoInfo, error)
}
