package acquire

import (
	"context"
	"errors"
	"strings"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// classify maps yt-dlp failures onto the pipeline error taxonomy by
// inspecting stderr text. yt-dlp exits non-zero for every failure mode,
// so the message is the only signal available.
func classify(ctx context.Context, err error, op string) *domain.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.Wrap(domain.KindTimeout, err, "%s timed out", op)
	}
	if errors.Is(err, context.Canceled) {
		return domain.Wrap(domain.KindCancelled, err, "%s cancelled", op)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "private video"),
		strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "has been removed"),
		strings.Contains(msg, "age-restricted"),
		strings.Contains(msg, "sign in to confirm"),
		strings.Contains(msg, "not available in your country"),
		strings.Contains(msg, "does not exist"):
		return domain.Wrap(domain.KindVideoUnavailable, err, "%s: video unavailable", op)

	case strings.Contains(msg, "requested format is not available"),
		strings.Contains(msg, "no video formats"),
		strings.Contains(msg, "no suitable format"):
		return domain.Wrap(domain.KindUnsupportedFormat, err, "%s: no compatible audio stream", op)

	case strings.Contains(msg, "timed out"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "temporary failure"),
		strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "http error 5"),
		strings.Contains(msg, "unable to download"):
		return domain.Wrap(domain.KindNetworkFailure, err, "%s: transient network failure", op)
	}

	return domain.Wrap(domain.KindVideoUnavailable, err, "%s failed", op)
}
