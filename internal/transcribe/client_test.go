package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/vidscribe/internal/acquire"
	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

const verboseJSON = `{
	"text": "hello world this is a test",
	"segments": [
		{"start": 0, "end": 5, "text": " hello world"},
		{"start": 5, "end": 12, "text": "this is a test"},
		{"start": 12, "end": 13, "text": "   "}
	]
}`

func testArtifact(t *testing.T) *acquire.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.m4a")
	if err := os.WriteFile(path, []byte("audio-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return &acquire.Artifact{Path: path, Format: ".m4a"}
}

func testStore(t *testing.T, endpoint string, timeoutSec int) *config.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
gemini:
  api_keys: [k]
transcriber:
  api_key: sk-test
  endpoint: ` + endpoint + `
  base_delay_ms: 1
`
	if timeoutSec > 0 {
		yaml += "  timeout_seconds: 1\n"
	}
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := config.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestTranscribeParsesSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart parse: %v", err)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		w.Write([]byte(verboseJSON))
	}))
	defer srv.Close()

	c := New(testStore(t, srv.URL, 0), logger.New("error"))
	segments, err := c.Transcribe(context.Background(), testArtifact(t), nil)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("len(segments) = %d, want 2 (blank segment dropped)", len(segments))
	}
	if segments[0].Text != "hello world" {
		t.Errorf("segments[0].Text = %q", segments[0].Text)
	}
	if segments[1].Start != 5 || segments[1].End != 12 {
		t.Errorf("segments[1] times = %v-%v", segments[1].Start, segments[1].End)
	}
}

func TestTranscribeRetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(verboseJSON))
	}))
	defer srv.Close()

	c := New(testStore(t, srv.URL, 0), logger.New("error"))
	segments, err := c.Transcribe(context.Background(), testArtifact(t), nil)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (two retries within ceiling)", calls)
	}
	if len(segments) != 2 {
		t.Errorf("len(segments) = %d, want 2", len(segments))
	}
}

func TestTranscribeProviderFailureIsTerminal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "file too large", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := New(testStore(t, srv.URL, 0), logger.New("error"))
	_, err := c.Transcribe(context.Background(), testArtifact(t), nil)
	if err == nil {
		t.Fatal("Transcribe() expected error")
	}
	if kind := domain.KindOf(err); kind != domain.KindTranscriptionFailed {
		t.Errorf("KindOf() = %v, want %v", kind, domain.KindTranscriptionFailed)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on provider failure)", calls)
	}
}

func TestTranscribeRetryCeilingExhausted(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(testStore(t, srv.URL, 0), logger.New("error"))
	_, err := c.Transcribe(context.Background(), testArtifact(t), nil)
	if err == nil {
		t.Fatal("Transcribe() expected error")
	}
	if kind := domain.KindOf(err); kind != domain.KindNetworkFailure {
		t.Errorf("KindOf() = %v, want %v", kind, domain.KindNetworkFailure)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestTranscribeJoinsProgressTicker(t *testing.T) {
	// Respond just past the first 2s tick so at least one synthetic
	// progress callback is in flight while the response lands.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2200 * time.Millisecond)
		w.Write([]byte(verboseJSON))
	}))
	defer srv.Close()

	var active atomic.Int32
	var calls atomic.Int32
	progress := func(fraction float64, message string) {
		active.Add(1)
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
		active.Add(-1)
	}

	c := New(testStore(t, srv.URL, 0), logger.New("error"))
	if _, err := c.Transcribe(context.Background(), testArtifact(t), progress); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if n := active.Load(); n != 0 {
		t.Errorf("%d progress callbacks still running after Transcribe returned", n)
	}
	seen := calls.Load()
	if seen == 0 {
		t.Fatal("no synthetic progress callbacks fired")
	}
	time.Sleep(150 * time.Millisecond)
	if calls.Load() != seen {
		t.Error("progress callback fired after Transcribe returned")
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "", "segments": []}`))
	}))
	defer srv.Close()

	c := New(testStore(t, srv.URL, 0), logger.New("error"))
	segments, err := c.Transcribe(context.Background(), testArtifact(t), nil)
	if err != nil {
		t.Fatalf("Transcribe() error = %v, want empty sequence not error", err)
	}
	if len(segments) != 0 {
		t.Errorf("len(segments) = %d, want 0", len(segments))
	}
}
