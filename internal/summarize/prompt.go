package summarize

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// One instruction template per summary type. The transcript and optional
// metadata header are appended by buildPrompt.
const (
	instructionComprehensive = `You are an expert video content analyst. Based on the transcript below, write a COMPREHENSIVE summary.

Requirements:
- Start with a one-sentence overview of the video's topic
- Cover ALL main points and steps in the order they appear
- Explain each point in detail, including important caveats and tips
- Use markdown: headings, bullet points, bold for key terms
- End with a "Key takeaways" section`

	instructionBrief = `You are an expert video content analyst. Based on the transcript below, write a BRIEF summary.

Requirements:
- At most one short paragraph (3-5 sentences)
- Plain prose, no headings or lists
- Capture only the central topic and conclusion`

	instructionBullets = `You are an expert video content analyst. Based on the transcript below, summarize the video as a BULLET LIST.

Requirements:
- 5-12 markdown bullet points, one point each
- Order bullets as the content appears in the video
- Keep each bullet under 25 words
- No introduction or closing text outside the list`

	instructionAcademic = `You are an academic writing assistant. Based on the transcript below, write a summary in a FORMAL ACADEMIC register.

Requirements:
- Structure: Abstract, Main Arguments, Evidence and Examples, Conclusion
- Neutral, precise tone; no colloquialisms
- Preserve technical terminology exactly as used in the transcript`
)

const (
	highlightsMarker = "HIGHLIGHTS:"
	timestampsMarker = "TIMESTAMPS:"

	highlightsInstruction = `After the summary, add a section that begins with a line containing exactly "HIGHLIGHTS:" followed by 3-8 lines, each starting with "- " and containing one short key phrase quoted verbatim from the transcript.`

	timestampsInstruction = `After any other sections, add a section that begins with a line containing exactly "TIMESTAMPS:" followed by one line per major topic shift, each starting with "- " and containing a short phrase quoted verbatim from the transcript where the shift occurs.`
)

func instructionFor(typ domain.SummaryType) string {
	switch typ {
	case domain.SummaryBrief:
		return instructionBrief
	case domain.SummaryBullets:
		return instructionBullets
	case domain.SummaryAcademic:
		return instructionAcademic
	default:
		return instructionComprehensive
	}
}

// buildPrompt assembles the provider prompt: type-specific instruction,
// optional structured-output instructions, video metadata, transcript.
func buildPrompt(transcript string, info *domain.VideoInfo, typ domain.SummaryType, opts domain.Options) string {
	var sb strings.Builder

	sb.WriteString(instructionFor(typ))
	sb.WriteString("\n")
	if opts.IncludeHighlights {
		sb.WriteString("\n")
		sb.WriteString(highlightsInstruction)
		sb.WriteString("\n")
	}
	if opts.IncludeTimestamps {
		sb.WriteString("\n")
		sb.WriteString(timestampsInstruction)
		sb.WriteString("\n")
	}

	if info != nil {
		sb.WriteString("\nVIDEO METADATA:\n")
		fmt.Fprintf(&sb, "Title: %s\n", info.Title)
		fmt.Fprintf(&sb, "Creator: %s\n", info.Uploader)
		fmt.Fprintf(&sb, "Duration: %d minutes and %d seconds\n", info.Duration/60, info.Duration%60)
		fmt.Fprintf(&sb, "Upload Date: %s\n", info.UploadDate)
		fmt.Fprintf(&sb, "Views: %d\n", info.ViewCount)
		if info.Description != "" {
			fmt.Fprintf(&sb, "\nVIDEO DESCRIPTION:\n%s\n", info.Description)
		}
	}

	sb.WriteString("\nTranscript:\n---\n")
	sb.WriteString(transcript)
	sb.WriteString("\n---")

	return sb.String()
}
