package summarize

import (
	"strings"
	"testing"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

func seg(start, end float64, text string) domain.TranscriptSegment {
	return domain.TranscriptSegment{Start: start, End: end, Text: text}
}

func TestJoinSegments(t *testing.T) {
	segments := []domain.TranscriptSegment{
		seg(0, 5, "first part"),
		seg(5, 12, "second part"),
		seg(12, 20, "third part"),
	}

	body, err := joinSegments(segments)
	if err != nil {
		t.Fatalf("joinSegments() error = %v", err)
	}

	if body != "first part\nsecond part\nthird part" {
		t.Errorf("body = %q", body)
	}

	// Concatenated body is at least as long as the longest segment and
	// preserves input ordering.
	longest := 0
	for _, s := range segments {
		if len(s.Text) > longest {
			longest = len(s.Text)
		}
	}
	if len(body) < longest {
		t.Errorf("len(body) = %d < longest segment %d", len(body), longest)
	}
	if strings.Index(body, "first") > strings.Index(body, "third") {
		t.Error("segment order changed in output")
	}
}

func TestJoinSegmentsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		segments []domain.TranscriptSegment
	}{
		{"out of order", []domain.TranscriptSegment{seg(5, 10, "b"), seg(0, 5, "a")}},
		{"overlap", []domain.TranscriptSegment{seg(0, 6, "a"), seg(5, 10, "b")}},
		{"duplicate", []domain.TranscriptSegment{seg(0, 0, "a"), seg(0, 0, "a")}},
		{"end before start", []domain.TranscriptSegment{seg(5, 2, "a")}},
		{"negative start", []domain.TranscriptSegment{seg(-1, 2, "a")}},
		{"empty text", []domain.TranscriptSegment{seg(0, 2, "  ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := joinSegments(tt.segments); err == nil {
				t.Error("joinSegments() expected validation error")
			}
		})
	}
}

func TestJoinSegmentsEmpty(t *testing.T) {
	body, err := joinSegments(nil)
	if err != nil {
		t.Fatalf("joinSegments(nil) error = %v", err)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}

func TestTruncateSegments(t *testing.T) {
	segments := []domain.TranscriptSegment{
		seg(0, 5, strings.Repeat("a", 10)),
		seg(5, 10, strings.Repeat("b", 10)),
		seg(10, 15, strings.Repeat("c", 10)),
	}

	tests := []struct {
		name      string
		limit     int
		wantKept  int
		wantTrunc bool
	}{
		{"fits", 100, 3, false},
		{"exact", 32, 3, false},
		{"drop last", 25, 2, true},
		{"drop two", 15, 1, true},
		{"nothing fits", 5, 0, true},
		{"no limit", 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, truncated := truncateSegments(segments, tt.limit)
			if len(kept) != tt.wantKept {
				t.Errorf("kept = %d, want %d", len(kept), tt.wantKept)
			}
			if truncated != tt.wantTrunc {
				t.Errorf("truncated = %v, want %v", truncated, tt.wantTrunc)
			}
			// Earliest segments are always the ones kept.
			for i, s := range kept {
				if s.Start != segments[i].Start {
					t.Errorf("kept[%d] is not the earliest segment", i)
				}
			}
		})
	}
}
