package subtitle

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
)

var srtTimeRe = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})$`)

func parseSRTStamp(t *testing.T, h, m, s, ms string) int64 {
	t.Helper()
	hv, _ := strconv.ParseInt(h, 10, 64)
	mv, _ := strconv.ParseInt(m, 10, 64)
	sv, _ := strconv.ParseInt(s, 10, 64)
	msv, _ := strconv.ParseInt(ms, 10, 64)
	return ((hv*60+mv)*60+sv)*1000 + msv
}

func sampleCues() []Cue {
	return []Cue{
		{Index: 1, StartSec: 0, EndSec: 4.5, Text: "Hello world this is a test narration line"},
		{Index: 2, StartSec: 4.5, EndSec: 9.017, Text: "Second scene narration text here"},
		{Index: 3, StartSec: 9.017, EndSec: 3671.25, Text: "Closing words"},
	}
}

// TestRenderSRTFormat checks block index, comma separator, blank-line
// separation.
func TestRenderSRTFormat(t *testing.T) {
	out, err := Render(sampleCues(), FormatSRT)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "1\n" +
		"00:00:00,000 --> 00:00:04,500\n" +
		"Hello world this is a test narration line\n" +
		"\n" +
		"2\n" +
		"00:00:04,500 --> 00:00:09,017\n" +
		"Second scene narration text here\n" +
		"\n" +
		"3\n" +
		"00:00:09,017 --> 01:01:11,250\n" +
		"Closing words\n" +
		"\n"
	if out != want {
		t.Fatalf("SRT output:\n%q\nwant:\n%q", out, want)
	}
}

// TestRenderVTTFormat checks the header token and period separator.
func TestRenderVTTFormat(t *testing.T) {
	out, err := Render(sampleCues(), FormatVTT)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header:\n%q", out)
	}
	if !strings.Contains(out, "00:00:04.500 --> 00:00:09.017") {
		t.Fatalf("period separator missing:\n%q", out)
	}
	if strings.Contains(out, ",") {
		t.Fatal("VTT output must not use comma separators")
	}
}

// TestRenderIdempotent checks same cues, same bytes.
func TestRenderIdempotent(t *testing.T) {
	for _, format := range []Format{FormatSRT, FormatVTT} {
		first, err := Render(sampleCues(), format)
		if err != nil {
			t.Fatal(err)
		}
		second, err := Render(sampleCues(), format)
		if err != nil {
			t.Fatal(err)
		}
		if first != second {
			t.Fatalf("%s rendering is not deterministic", format)
		}
	}
}

// TestRenderUnknownFormat checks the error path.
func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(sampleCues(), Format("ass")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// TestSRTRoundTrip parses the timestamps back out of SRT output and
// checks they reproduce the cue boundaries to millisecond precision.
func TestSRTRoundTrip(t *testing.T) {
	cues := sampleCues()
	out, err := Render(cues, FormatSRT)
	if err != nil {
		t.Fatal(err)
	}

	var parsed [][2]int64
	for _, line := range strings.Split(out, "\n") {
		if m := srtTimeRe.FindStringSubmatch(line); m != nil {
			parsed = append(parsed, [2]int64{
				parseSRTStamp(t, m[1], m[2], m[3], m[4]),
				parseSRTStamp(t, m[5], m[6], m[7], m[8]),
			})
		}
	}
	if len(parsed) != len(cues) {
		t.Fatalf("parsed %d time lines, want %d", len(parsed), len(cues))
	}
	for i, cue := range cues {
		wantStart := int64(cue.StartSec*1000 + 0.5)
		wantEnd := int64(cue.EndSec*1000 + 0.5)
		if parsed[i][0] != wantStart || parsed[i][1] != wantEnd {
			t.Fatalf("cue %d round-trip = %v, want [%d %d]", i+1, parsed[i], wantStart, wantEnd)
		}
	}
}

// TestTimestampRounding checks millisecond rounding and field carry.
func TestTimestampRounding(t *testing.T) {
	cases := map[float64]string{
		0:        "00:00:00,000",
		0.0004:   "00:00:00,000",
		61.5:     "00:01:01,500",
		3599.999: "00:59:59,999",
		3600:     "01:00:00,000",
		7325.042: "02:02:05,042",
	}
	for in, want := range cases {
		if got := Timestamp(in, ','); got != want {
			t.Errorf("Timestamp(%v) = %q, want %q", in, got, want)
		}
	}
}
