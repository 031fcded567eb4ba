package summarize

import (
	"strings"
	"testing"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

func TestBuildPromptPerType(t *testing.T) {
	types := []domain.SummaryType{
		domain.SummaryComprehensive,
		domain.SummaryBrief,
		domain.SummaryBullets,
		domain.SummaryAcademic,
	}

	seen := map[string]domain.SummaryType{}
	for _, typ := range types {
		prompt := buildPrompt("transcript text", nil, typ, domain.Options{})

		if !strings.Contains(prompt, "transcript text") {
			t.Errorf("%s prompt missing transcript", typ)
		}
		instruction := instructionFor(typ)
		if !strings.Contains(prompt, instruction) {
			t.Errorf("%s prompt missing its instruction", typ)
		}
		if prev, dup := seen[instruction]; dup {
			t.Errorf("types %s and %s share an instruction template", prev, typ)
		}
		seen[instruction] = typ
	}
}

func TestBuildPromptSections(t *testing.T) {
	tests := []struct {
		name           string
		opts           domain.Options
		wantHighlights bool
		wantTimestamps bool
	}{
		{"neither", domain.Options{}, false, false},
		{"highlights", domain.Options{IncludeHighlights: true}, true, false},
		{"timestamps", domain.Options{IncludeTimestamps: true}, false, true},
		{"both", domain.Options{IncludeHighlights: true, IncludeTimestamps: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := buildPrompt("body", nil, domain.SummaryBrief, tt.opts)
			if got := strings.Contains(prompt, highlightsMarker); got != tt.wantHighlights {
				t.Errorf("highlights marker present = %v, want %v", got, tt.wantHighlights)
			}
			if got := strings.Contains(prompt, timestampsMarker); got != tt.wantTimestamps {
				t.Errorf("timestamps marker present = %v, want %v", got, tt.wantTimestamps)
			}
		})
	}
}

func TestBuildPromptMetadata(t *testing.T) {
	info := &domain.VideoInfo{
		Title:      "Espresso 101",
		Uploader:   "Coffee Lab",
		Duration:   305,
		ViewCount:  1000,
		UploadDate: "2025-01-15",
	}

	prompt := buildPrompt("body", info, domain.SummaryComprehensive, domain.Options{})
	for _, want := range []string{"Espresso 101", "Coffee Lab", "5 minutes and 5 seconds", "2025-01-15"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
