package summarize

import (
	"sort"
	"strings"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// parseResponse splits the provider's free-text reply into the summary
// body and the phrase lists of any requested sections. A requested
// section that cannot be found is a parse failure; the caller degrades
// to the raw response rather than failing the job.
func parseResponse(raw string, opts domain.Options) (body string, highlights, timestamps []string, err error) {
	raw = strings.TrimSpace(raw)
	if !opts.IncludeHighlights && !opts.IncludeTimestamps {
		return raw, nil, nil, nil
	}

	lines := strings.Split(raw, "\n")
	var bodyLines []string
	section := ""

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case highlightsMarker:
			section = highlightsMarker
			continue
		case timestampsMarker:
			section = timestampsMarker
			continue
		}

		switch section {
		case highlightsMarker:
			if phrase, ok := bulletText(trimmed); ok {
				highlights = append(highlights, phrase)
			}
		case timestampsMarker:
			if phrase, ok := bulletText(trimmed); ok {
				timestamps = append(timestamps, phrase)
			}
		default:
			bodyLines = append(bodyLines, line)
		}
	}

	if opts.IncludeHighlights && highlights == nil {
		return "", nil, nil, domain.Errorf(domain.KindParseFailed, "response has no %s section", highlightsMarker)
	}
	if opts.IncludeTimestamps && timestamps == nil {
		return "", nil, nil, domain.Errorf(domain.KindParseFailed, "response has no %s section", timestampsMarker)
	}

	body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if body == "" {
		return "", nil, nil, domain.Errorf(domain.KindParseFailed, "response has sections but no summary body")
	}
	return body, highlights, timestamps, nil
}

func bulletText(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			text := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			return text, text != ""
		}
	}
	return "", false
}

// matchPhrases maps extracted phrases back to transcript segment start
// times and returns them in time order.
func matchPhrases(phrases []string, segments []domain.TranscriptSegment) []domain.Highlight {
	out := make([]domain.Highlight, 0, len(phrases))
	for _, phrase := range phrases {
		out = append(out, domain.Highlight{
			Timestamp: matchTimestamp(phrase, segments),
			Text:      phrase,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// matchTimestamp finds the segment a phrase originated from: first by
// case-insensitive containment, then by greatest shared-word overlap.
// Ties go to the earlier segment, so the nearest preceding start wins.
func matchTimestamp(phrase string, segments []domain.TranscriptSegment) float64 {
	if len(segments) == 0 {
		return 0
	}

	needle := strings.ToLower(phrase)
	for _, s := range segments {
		if strings.Contains(strings.ToLower(s.Text), needle) {
			return s.Start
		}
	}

	phraseWords := wordSet(needle)
	best := segments[0].Start
	bestOverlap := -1
	for _, s := range segments {
		overlap := 0
		for w := range wordSet(strings.ToLower(s.Text)) {
			if _, ok := phraseWords[w]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = s.Start
		}
	}
	return best
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		w = strings.Trim(w, ".,!?;:\"'()[]")
		if len(w) > 2 {
			out[w] = struct{}{}
		}
	}
	return out
}
