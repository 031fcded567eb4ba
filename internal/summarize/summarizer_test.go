package summarize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

func testStore(t *testing.T) *config.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "gemini:\n  api_keys: [k]\n  requests_per_minute: 6000\ntranscriber:\n  api_key: sk\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := config.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func stubbedSummarizer(t *testing.T, reply string, replyErr error) Summarizer {
	t.Helper()
	s := New(testStore(t), logger.New("error")).(*implSummarizer)
	s.generate = func(ctx context.Context, cfg config.GeminiConfig, prompt string) (string, error) {
		return reply, replyErr
	}
	return s
}

var summarizeSegments = []domain.TranscriptSegment{
	{Start: 0, End: 5, Text: "first we dial in the grind size"},
	{Start: 5, End: 12, Text: "then we check the water temperature"},
}

func TestSummarizeStructuredReply(t *testing.T) {
	reply := "The video covers espresso basics.\n\n" +
		"HIGHLIGHTS:\n- grind size\n- water temperature\n"

	s := stubbedSummarizer(t, reply, nil)
	summary, err := s.Summarize(context.Background(), summarizeSegments, nil,
		domain.SummaryBrief, domain.Options{IncludeHighlights: true})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if summary.Body != "The video covers espresso basics." {
		t.Errorf("Body = %q", summary.Body)
	}
	if len(summary.Highlights) != 2 {
		t.Fatalf("len(Highlights) = %d, want 2", len(summary.Highlights))
	}
	if summary.Highlights[0].Timestamp != 0 || summary.Highlights[1].Timestamp != 5 {
		t.Errorf("highlight timestamps = %v, %v", summary.Highlights[0].Timestamp, summary.Highlights[1].Timestamp)
	}
}

func TestSummarizeUnparsableReplyDegradesToRawBody(t *testing.T) {
	// Highlights were requested but the reply has no HIGHLIGHTS section:
	// the summary degrades to the raw reply instead of failing the job.
	reply := "Just a plain paragraph with no section markers at all."

	s := stubbedSummarizer(t, reply, nil)
	summary, err := s.Summarize(context.Background(), summarizeSegments, nil,
		domain.SummaryComprehensive, domain.Options{IncludeHighlights: true, IncludeTimestamps: true})
	if err != nil {
		t.Fatalf("Summarize() error = %v, want degraded summary", err)
	}

	if summary.Body != reply {
		t.Errorf("Body = %q, want raw reply", summary.Body)
	}
	if len(summary.Highlights) != 0 || len(summary.Timestamps) != 0 {
		t.Errorf("degraded summary has lists: highlights=%d timestamps=%d",
			len(summary.Highlights), len(summary.Timestamps))
	}
	if summary.Type != domain.SummaryComprehensive {
		t.Errorf("Type = %q", summary.Type)
	}
}

func TestSummarizeProviderError(t *testing.T) {
	s := stubbedSummarizer(t, "", domain.Errorf(domain.KindSummarizationFailed, "all API keys exhausted"))

	_, err := s.Summarize(context.Background(), summarizeSegments, nil,
		domain.SummaryBrief, domain.Options{})
	if err == nil {
		t.Fatal("Summarize() expected error")
	}
	if kind := domain.KindOf(err); kind != domain.KindSummarizationFailed {
		t.Errorf("KindOf() = %v", kind)
	}
}

func TestSummarizeTruncatesOverlongTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "gemini:\n  api_keys: [k]\n  input_char_limit: 40\n  requests_per_minute: 6000\ntranscriber:\n  api_key: sk\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := config.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}

	var prompts []string
	s := New(store, logger.New("error")).(*implSummarizer)
	s.generate = func(ctx context.Context, cfg config.GeminiConfig, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "short summary", nil
	}

	summary, err := s.Summarize(context.Background(), summarizeSegments, nil,
		domain.SummaryBrief, domain.Options{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !summary.Truncated {
		t.Error("Truncated = false, want true")
	}
	if len(prompts) != 1 {
		t.Fatalf("provider called %d times", len(prompts))
	}
}
