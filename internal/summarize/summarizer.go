package summarize

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

type implSummarizer struct {
	store   *config.Store
	logger  logger.Logger
	limiter *rate.Limiter

	// generate performs the provider call. Tests substitute it.
	generate func(ctx context.Context, cfg config.GeminiConfig, prompt string) (string, error)

	mu         sync.Mutex
	currentKey int
}

// New creates a Summarizer that rotates through the configured Gemini
// API keys and rate-limits provider calls.
func New(store *config.Store, log logger.Logger) Summarizer {
	cfg := store.Snapshot().Gemini
	s := &implSummarizer{
		store:   store,
		logger:  log,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}
	s.generate = s.callGemini
	return s
}

// Summarize builds the type-specific prompt, invokes the language model
// and decomposes the reply. A reply that cannot be parsed into the
// requested structure degrades to the raw text with empty lists instead
// of failing the job.
func (s *implSummarizer) Summarize(ctx context.Context, segments []domain.TranscriptSegment, info *domain.VideoInfo, typ domain.SummaryType, opts domain.Options) (*domain.Summary, error) {
	cfg := s.store.Snapshot().Gemini

	body, err := joinSegments(segments)
	if err != nil {
		return nil, err
	}

	truncated := false
	if len(body) > cfg.InputCharLimit {
		var kept []domain.TranscriptSegment
		kept, truncated = truncateSegments(segments, cfg.InputCharLimit)
		segments = kept
		if body, err = joinSegments(segments); err != nil {
			return nil, err
		}
		s.logger.Warn(ctx, "Transcript truncated to %d segments (%d char limit)", len(segments), cfg.InputCharLimit)
	}

	prompt := buildPrompt(body, info, typ, opts)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	raw, err := s.generate(ctx, cfg, prompt)
	if err != nil {
		return nil, err
	}

	summaryBody, highlightPhrases, timestampPhrases, perr := parseResponse(raw, opts)
	if perr != nil {
		s.logger.Warn(ctx, "Summary parse failed, falling back to raw response: %v", perr)
		return &domain.Summary{
			Type:      typ,
			Body:      strings.TrimSpace(raw),
			Truncated: truncated,
		}, nil
	}

	summary := &domain.Summary{
		Type:      typ,
		Body:      summaryBody,
		Truncated: truncated,
	}
	if opts.IncludeHighlights {
		summary.Highlights = matchPhrases(highlightPhrases, segments)
	}
	if opts.IncludeTimestamps {
		summary.Timestamps = matchPhrases(timestampPhrases, segments)
	}
	return summary, nil
}

// callGemini sends the prompt to Gemini and returns the response text.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, cfg config.GeminiConfig, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", domain.Wrap(domain.KindCancelled, err, "summarization cancelled while rate limited")
	}

	attempts := len(cfg.APIKeys)
	var lastErr error

	for range attempts {
		key := cfg.APIKeys[s.keyIndex(len(cfg.APIKeys))]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = err
			s.rotateKey(len(cfg.APIKeys))
			continue
		}

		result, err := client.Models.GenerateContent(ctx, cfg.Model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Gemini key rate limited, rotating...")
				s.rotateKey(len(cfg.APIKeys))
				lastErr = err
				continue
			}
			return "", domain.Wrap(domain.KindSummarizationFailed, err, "generate summary")
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if strings.TrimSpace(text.String()) != "" {
				return text.String(), nil
			}
		}

		return "", domain.Errorf(domain.KindSummarizationFailed, "empty response from language model")
	}

	return "", domain.Wrap(domain.KindSummarizationFailed, lastErr, "all API keys exhausted")
}

func (s *implSummarizer) keyIndex(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey >= n {
		s.currentKey = 0
	}
	return s.currentKey
}

func (s *implSummarizer) rotateKey(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % n
}
