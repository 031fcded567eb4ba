package summarize

import (
	"strings"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// joinSegments concatenates segment text in the given order, validating
// the sequence first. Duplicate or out-of-order segments are a caller
// error and are rejected rather than silently reordered.
func joinSegments(segments []domain.TranscriptSegment) (string, error) {
	if err := validateSegments(segments); err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, s := range segments {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Text)
	}
	return sb.String(), nil
}

func validateSegments(segments []domain.TranscriptSegment) error {
	for i, s := range segments {
		if strings.TrimSpace(s.Text) == "" {
			return domain.Errorf(domain.KindInternal, "transcript segment %d has empty text", i)
		}
		if s.Start < 0 || s.End < s.Start {
			return domain.Errorf(domain.KindInternal, "transcript segment %d has invalid times %v-%v", i, s.Start, s.End)
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if s.Start < prev.End {
			return domain.Errorf(domain.KindInternal, "transcript segment %d overlaps or regresses (%v < %v)", i, s.Start, prev.End)
		}
		if s.Start == prev.Start && s.Text == prev.Text {
			return domain.Errorf(domain.KindInternal, "transcript segment %d duplicates segment %d", i, i-1)
		}
	}
	return nil
}

// truncateSegments drops trailing segments until the joined text fits
// the provider input limit. Truncation is always at segment boundaries,
// keeping the earliest segments.
func truncateSegments(segments []domain.TranscriptSegment, limit int) ([]domain.TranscriptSegment, bool) {
	if limit <= 0 {
		return segments, false
	}

	total := 0
	for i, s := range segments {
		if i > 0 {
			total++ // joining newline
		}
		total += len(s.Text)
		if total > limit {
			return segments[:i], true
		}
	}
	return segments, false
}
