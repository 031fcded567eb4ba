package domain

import "fmt"

// SummaryType selects one of the four instruction templates used when
// prompting the language model.
type SummaryType string

const (
	SummaryComprehensive SummaryType = "comprehensive"
	SummaryBrief         SummaryType = "brief"
	SummaryBullets       SummaryType = "bullets"
	SummaryAcademic      SummaryType = "academic"
)

// ParseSummaryType validates a client-supplied summary type string.
func ParseSummaryType(s string) (SummaryType, error) {
	switch SummaryType(s) {
	case SummaryComprehensive, SummaryBrief, SummaryBullets, SummaryAcademic:
		return SummaryType(s), nil
	}
	return "", fmt.Errorf("unknown summary type %q", s)
}

// Stage tracks each pipeline phase of a single job.
type Stage string

const (
	StageValidating   Stage = "validating"
	StageAcquiring    Stage = "acquiring"
	StageTranscribing Stage = "transcribing"
	StageSummarizing  Stage = "summarizing"
	StageComplete     Stage = "complete"
	StageFailed       Stage = "failed"
)

// Terminal reports whether a stage ends the job.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}

// Options are the per-request summary toggles.
type Options struct {
	IncludeTimestamps bool `json:"include_timestamps"`
	IncludeHighlights bool `json:"include_highlights"`
}

// VideoInfo is the public metadata of the source video. It is populated
// once by the acquirer and immutable afterwards. Only the first five
// fields are exposed in terminal responses; the rest feed prompts.
type VideoInfo struct {
	Title      string `json:"title"`
	Uploader   string `json:"uploader"`
	Duration   int    `json:"duration"`
	ViewCount  int64  `json:"view_count"`
	UploadDate string `json:"upload_date"`

	LikeCount   int64  `json:"-"`
	Description string `json:"-"`
	ChannelURL  string `json:"-"`
}

// TranscriptSegment is one timed utterance from the speech-to-text
// provider. Sequences are time-ordered and non-overlapping.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Highlight pairs a short extracted phrase with the start time of the
// transcript segment it was matched to.
type Highlight struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
}

// Summary is the final artifact of a job.
type Summary struct {
	Type       SummaryType `json:"type"`
	Body       string      `json:"body"`
	Highlights []Highlight `json:"highlights,omitempty"`
	Timestamps []Highlight `json:"timestamps,omitempty"`
	Truncated  bool        `json:"truncated"`
}

// ProgressEvent is one externally observable progress update. Percent is
// derived from fixed stage weight bands and never decreases within a job.
type ProgressEvent struct {
	JobID   string `json:"job_id"`
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percentage"`
	Message string `json:"message"`
}

// ProgressFunc reports intra-stage progress as a fraction in [0,1] with
// a human-readable message. Components may call it zero or more times.
type ProgressFunc func(fraction float64, message string)

// Result is the success payload of a finished job. Failures travel as
// typed errors alongside, never inside the payload.
type Result struct {
	Type       SummaryType `json:"summary_type,omitempty"`
	Text       string      `json:"text,omitempty"`
	VideoInfo  *VideoInfo  `json:"video_info,omitempty"`
	Highlights []Highlight `json:"highlights,omitempty"`
	Timestamps []Highlight `json:"timestamps,omitempty"`
	Truncated  bool        `json:"truncated,omitempty"`
}
