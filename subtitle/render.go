package subtitle

import (
	"fmt"
	"math"
	"strings"
)

// Format selects a caption stream syntax.
type Format string

const (
	// FormatSRT is SubRip: numbered blocks, comma millisecond separator.
	FormatSRT Format = "srt"
	// FormatVTT is WebVTT: header token, period millisecond separator.
	FormatVTT Format = "vtt"
)

// Render formats a cue sequence into the requested caption syntax.
// It is pure: same cues, same bytes.
func Render(cues []Cue, format Format) (string, error) {
	var sb strings.Builder

	switch format {
	case FormatSRT:
		for i, cue := range cues {
			fmt.Fprintf(&sb, "%d\n", i+1)
			fmt.Fprintf(&sb, "%s --> %s\n", Timestamp(cue.StartSec, ','), Timestamp(cue.EndSec, ','))
			sb.WriteString(cue.Text)
			sb.WriteString("\n\n")
		}
	case FormatVTT:
		sb.WriteString("WEBVTT\n\n")
		for _, cue := range cues {
			fmt.Fprintf(&sb, "%s --> %s\n", Timestamp(cue.StartSec, '.'), Timestamp(cue.EndSec, '.'))
			sb.WriteString(cue.Text)
			sb.WriteString("\n\n")
		}
	default:
		return "", fmt.Errorf("unknown caption format %q", format)
	}

	return sb.String(), nil
}

// Timestamp formats seconds as HH:MM:SS<sep>mmm, rounding to the
// nearest millisecond.
func Timestamp(seconds float64, sep byte) string {
	totalMs := int64(math.Round(seconds * 1000))
	if totalMs < 0 {
		totalMs = 0
	}
	hours := totalMs / 3600000
	minutes := (totalMs % 3600000) / 60000
	secs := (totalMs % 60000) / 1000
	millis := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, millis)
}
