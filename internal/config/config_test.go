package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Gemini: GeminiConfig{
					APIKeys: []string{"key-1"},
				},
				Transcriber: TranscriberConfig{
					APIKey: "sk-test",
				},
			},
			wantErr: false,
		},
		{
			name: "missing gemini keys",
			config: Config{
				Transcriber: TranscriberConfig{
					APIKey: "sk-test",
				},
			},
			wantErr: true,
		},
		{
			name: "missing transcriber key",
			config: Config{
				Gemini: GeminiConfig{
					APIKeys: []string{"key-1"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{
		Gemini:      GeminiConfig{APIKeys: []string{"key-1"}},
		Transcriber: TranscriberConfig{APIKey: "sk-test"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.YTDLP.BinaryPath != "yt-dlp" {
		t.Errorf("YTDLP.BinaryPath = %q, want yt-dlp", cfg.YTDLP.BinaryPath)
	}
	if cfg.YTDLP.MaxAttempts != 3 {
		t.Errorf("YTDLP.MaxAttempts = %d, want 3", cfg.YTDLP.MaxAttempts)
	}
	if cfg.Transcriber.Model != "whisper-1" {
		t.Errorf("Transcriber.Model = %q, want whisper-1", cfg.Transcriber.Model)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q, want gemini-2.5-flash", cfg.Gemini.Model)
	}
	if cfg.Jobs.MaxConcurrent != 4 {
		t.Errorf("Jobs.MaxConcurrent = %d, want 4", cfg.Jobs.MaxConcurrent)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

const testYAML = `
gemini:
  api_keys:
    - key-1
    - key-2
  model: gemini-2.5-pro
transcriber:
  api_key: sk-test
jobs:
  max_concurrent: 2
logging:
  level: debug
`

func TestStoreLoadAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	cfg := store.Snapshot()
	if got := len(cfg.Gemini.APIKeys); got != 2 {
		t.Errorf("len(APIKeys) = %d, want 2", got)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Gemini.Model = %q, want gemini-2.5-pro", cfg.Gemini.Model)
	}
	if cfg.Jobs.MaxConcurrent != 2 {
		t.Errorf("Jobs.MaxConcurrent = %d, want 2", cfg.Jobs.MaxConcurrent)
	}

	updated := `
gemini:
  api_keys:
    - rotated
transcriber:
  api_key: sk-new
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	cfg = store.Snapshot()
	if cfg.Gemini.APIKeys[0] != "rotated" {
		t.Errorf("APIKeys[0] = %q, want rotated", cfg.Gemini.APIKeys[0])
	}
}

func TestStoreReloadKeepsSnapshotOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	// Invalid: no API keys at all.
	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("Reload() expected error for invalid config")
	}

	if got := store.Snapshot().Gemini.APIKeys[0]; got != "key-1" {
		t.Errorf("snapshot replaced on failed reload, APIKeys[0] = %q", got)
	}
}

func TestNewStoreMissingFile(t *testing.T) {
	if _, err := NewStore(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("NewStore() expected error for missing file")
	}
}
