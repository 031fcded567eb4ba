package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/vidscribe/internal/acquire"
	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/pkg/retry"
)

type implClient struct {
	store      *config.Store
	logger     logger.Logger
	httpClient *http.Client
}

// New creates a Client for the configured speech-to-text endpoint.
// Per-call deadlines come from config, so the http.Client itself carries
// no timeout.
func New(store *config.Store, log logger.Logger) Client {
	return &implClient{
		store:      store,
		logger:     log,
		httpClient: &http.Client{},
	}
}

// verboseTranscription mirrors the provider's verbose_json response.
type verboseTranscription struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the artifact and waits for the provider to finish.
// The provider gives no usable progress signal while the request is in
// flight, so the transcribing band advances in even synthetic steps until
// the response lands. Transient failures are retried with backoff; a
// provider-reported failure and an exceeded deadline are both terminal.
func (c *implClient) Transcribe(ctx context.Context, artifact *acquire.Artifact, progress domain.ProgressFunc) ([]domain.TranscriptSegment, error) {
	cfg := c.store.Snapshot().Transcriber

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	stopTicker := c.tickProgress(ctx, progress)
	defer stopTicker()

	policy := retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay(),
		Retryable:   domain.Retryable,
	}

	var result verboseTranscription
	err := policy.Do(ctx, func(ctx context.Context) error {
		var attemptErr error
		result, attemptErr = c.upload(ctx, cfg, artifact)
		return attemptErr
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.Wrap(domain.KindTimeout, err, "transcription exceeded %s wait bound", cfg.Timeout())
		}
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.Wrap(domain.KindTranscriptionFailed, err, "transcription failed")
	}

	segments := make([]domain.TranscriptSegment, 0, len(result.Segments))
	for _, s := range result.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  text,
		})
	}

	// Empty audio legitimately yields zero segments.
	c.logger.Info(ctx, "Transcription complete: %d segments", len(segments))
	return segments, nil
}

// upload performs one multipart request against the provider.
func (c *implClient) upload(ctx context.Context, cfg config.TranscriberConfig, artifact *acquire.Artifact) (verboseTranscription, error) {
	var zero verboseTranscription

	f, err := os.Open(artifact.Path)
	if err != nil {
		return zero, domain.Wrap(domain.KindTranscriptionFailed, err, "open audio artifact")
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(artifact.Path))
	if err != nil {
		return zero, domain.Wrap(domain.KindInternal, err, "create multipart file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return zero, domain.Wrap(domain.KindInternal, err, "copy audio data")
	}
	if err := writer.WriteField("model", cfg.Model); err != nil {
		return zero, domain.Wrap(domain.KindInternal, err, "write model field")
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return zero, domain.Wrap(domain.KindInternal, err, "write response_format field")
	}
	if err := writer.Close(); err != nil {
		return zero, domain.Wrap(domain.KindInternal, err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, body)
	if err != nil {
		return zero, domain.Wrap(domain.KindInternal, err, "create transcription request")
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		return zero, domain.Wrap(domain.KindNetworkFailure, err, "transcription request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return zero, domain.Errorf(domain.KindNetworkFailure, "provider returned status %d", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return zero, domain.Wrap(domain.KindTranscriptionFailed, decodeAPIError(resp), "provider rejected transcription")
	}

	var payload verboseTranscription
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return zero, domain.Wrap(domain.KindTranscriptionFailed, err, "decode transcription response")
	}
	return payload, nil
}

// tickProgress advances the intra-stage fraction in even steps while the
// upload is in flight, holding short of completion. The returned stop
// function blocks until the goroutine has exited, so no callback can
// fire after it returns.
func (c *implClient) tickProgress(ctx context.Context, progress domain.ProgressFunc) func() {
	if progress == nil {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		fraction := 0.0
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if fraction < 0.9 {
					fraction += 0.1
				}
				progress(fraction, "Transcribing audio...")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-stopped
	}
}

func decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("status %d type %s message %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}
