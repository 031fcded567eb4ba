package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
	"github.com/nguyentantai21042004/vidscribe/pkg/retry"
)

type implAcquirer struct {
	store    *config.Store
	executor executor.Executor
	logger   logger.Logger
}

// New creates an Acquirer backed by the yt-dlp binary.
func New(store *config.Store, exec executor.Executor, log logger.Logger) Acquirer {
	return &implAcquirer{
		store:    store,
		executor: exec,
		logger:   log,
	}
}

// ytdlpInfo mirrors the subset of `yt-dlp -J` output the pipeline uses.
type ytdlpInfo struct {
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	ViewCount  int64   `json:"view_count"`
	LikeCount  int64   `json:"like_count"`
	UploadDate string  `json:"upload_date"`
	Desc       string  `json:"description"`
	ChannelURL string  `json:"channel_url"`
}

// Acquire probes metadata for the video, then downloads the best
// available audio-only stream to a temp file. Transient network failures
// are retried with backoff; the artifact is only returned on success, so
// the caller owns exactly one cleanup obligation.
func (a *implAcquirer) Acquire(ctx context.Context, videoID string, progress domain.ProgressFunc) (*Artifact, *domain.VideoInfo, error) {
	cfg := a.store.Snapshot().YTDLP
	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	policy := retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay(),
		Retryable:   domain.Retryable,
	}

	var info *domain.VideoInfo
	err := policy.Do(ctx, func(ctx context.Context) error {
		var probeErr error
		info, probeErr = a.probe(ctx, cfg, watchURL)
		return probeErr
	})
	if err != nil {
		return nil, nil, err
	}

	a.logger.Info(ctx, "Video info extracted: %s (%ds)", info.Title, info.Duration)
	if progress != nil {
		progress(0.3, "Video metadata retrieved")
	}

	if err := os.MkdirAll(cfg.TempDir, 0755); err != nil {
		return nil, nil, domain.Wrap(domain.KindInternal, err, "create temp dir %s", cfg.TempDir)
	}
	path := filepath.Join(cfg.TempDir, uuid.NewString()+".m4a")

	var artifact *Artifact
	err = policy.Do(ctx, func(ctx context.Context) error {
		var dlErr error
		artifact, dlErr = a.download(ctx, cfg, watchURL, path)
		return dlErr
	})
	if err != nil {
		_ = os.Remove(path)
		return nil, nil, err
	}

	a.logger.Info(ctx, "Audio downloaded: %s", artifact.Path)
	if progress != nil {
		progress(1.0, "Audio download complete")
	}
	return artifact, info, nil
}

// probe runs a metadata-only extraction (`yt-dlp -J`).
func (a *implAcquirer) probe(ctx context.Context, cfg config.YTDLPConfig, url string) (*domain.VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	out, err := a.executor.Execute(ctx, cfg.BinaryPath, "-J", "--no-playlist", url)
	if err != nil {
		return nil, classify(ctx, err, "probe video metadata")
	}

	var raw ytdlpInfo
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return nil, domain.Wrap(domain.KindVideoUnavailable, err, "parse video metadata")
	}

	return &domain.VideoInfo{
		Title:       raw.Title,
		Uploader:    raw.Uploader,
		Duration:    int(raw.Duration),
		ViewCount:   raw.ViewCount,
		UploadDate:  formatUploadDate(raw.UploadDate),
		LikeCount:   raw.LikeCount,
		Description: raw.Desc,
		ChannelURL:  raw.ChannelURL,
	}, nil
}

// download fetches the audio stream, falling back once to a narrower
// format selector when the preferred one yields nothing.
func (a *implAcquirer) download(ctx context.Context, cfg config.YTDLPConfig, url, path string) (*Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	if err := a.runDownload(ctx, cfg, cfg.Format, url, path); err != nil {
		return nil, err
	}

	if !fileHasContent(path) {
		a.logger.Warn(ctx, "Downloaded file missing or empty, trying fallback format: %s", path)
		if err := a.runDownload(ctx, cfg, cfg.FallbackFormat, url, path); err != nil {
			return nil, err
		}
	}

	if !fileHasContent(path) {
		return nil, domain.Errorf(domain.KindUnsupportedFormat, "no compatible audio stream for %s", url)
	}

	return &Artifact{Path: path, Format: filepath.Ext(path)}, nil
}

func (a *implAcquirer) runDownload(ctx context.Context, cfg config.YTDLPConfig, format, url, path string) error {
	args := []string{
		"-f", format,
		"-o", path,
		"--no-playlist",
		"--no-warnings",
		url,
	}
	if _, err := a.executor.Execute(ctx, cfg.BinaryPath, args...); err != nil {
		return classify(ctx, err, "download audio")
	}
	return nil
}

func fileHasContent(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Size() > 0
}

// formatUploadDate converts yt-dlp's YYYYMMDD into YYYY-MM-DD.
func formatUploadDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[0:4] + "-" + d[4:6] + "-" + d[6:8]
}
