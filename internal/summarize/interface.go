package summarize

import (
	"context"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Summarizer turns an ordered transcript into a structured summary via
// the remote language-model provider.
type Summarizer interface {
	Summarize(ctx context.Context, segments []domain.TranscriptSegment, info *domain.VideoInfo, typ domain.SummaryType, opts domain.Options) (*domain.Summary, error)
}
