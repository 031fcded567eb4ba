package export

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Markdown renders a finished summary as a self-contained markdown
// document: title, source metadata, summary body, then the optional
// highlight and timestamp sections.
func Markdown(typ domain.SummaryType, res *domain.Result) string {
	var b strings.Builder

	title := "Video Summary"
	if res.VideoInfo != nil && res.VideoInfo.Title != "" {
		title = res.VideoInfo.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if info := res.VideoInfo; info != nil {
		if info.Uploader != "" {
			fmt.Fprintf(&b, "**Channel:** %s\n\n", info.Uploader)
		}
		if info.Duration > 0 {
			fmt.Fprintf(&b, "**Duration:** %s\n\n", formatStamp(float64(info.Duration)))
		}
		if info.UploadDate != "" {
			fmt.Fprintf(&b, "**Published:** %s\n\n", info.UploadDate)
		}
	}

	fmt.Fprintf(&b, "## Summary (%s)\n\n", typ)
	b.WriteString(strings.TrimSpace(res.Text))
	b.WriteString("\n")
	if res.Truncated {
		b.WriteString("\n*Transcript was truncated before summarization.*\n")
	}

	if len(res.Highlights) > 0 {
		b.WriteString("\n## Highlights\n\n")
		for _, h := range res.Highlights {
			fmt.Fprintf(&b, "- [%s] %s\n", formatStamp(h.Timestamp), h.Text)
		}
	}

	if len(res.Timestamps) > 0 {
		b.WriteString("\n## Key Moments\n\n")
		for _, ts := range res.Timestamps {
			fmt.Fprintf(&b, "- [%s] %s\n", formatStamp(ts.Timestamp), ts.Text)
		}
	}

	return b.String()
}

// formatStamp renders seconds as mm:ss, or h:mm:ss past the hour mark.
func formatStamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
