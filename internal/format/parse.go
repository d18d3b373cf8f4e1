package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scribed-io/scribed/internal/transcript"
)

// ParseSRT reads SubRip text back into transcript units. It is lenient about
// index lines and blank-line runs, and joins multi-line cue text with spaces.
// Cues without a parseable timecode line are skipped.
func ParseSRT(s string) ([]transcript.Unit, error) {
	var units []transcript.Unit
	blocks := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		var (
			start, end float64
			text       []string
			timed      bool
		)
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !timed {
				if st, en, ok := parseTimecodeLine(line); ok {
					start, end = st, en
					timed = true
					continue
				}
				if _, err := strconv.Atoi(line); err == nil {
					continue // index line
				}
				continue
			}
			text = append(text, line)
		}
		if timed && len(text) > 0 {
			units = append(units, transcript.Unit{
				Start: start,
				End:   end,
				Text:  strings.Join(text, " "),
			})
		}
	}
	return units, nil
}

func parseTimecodeLine(line string) (start, end float64, ok bool) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok = parseTimestamp(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, false
	}
	end, ok = parseTimestamp(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// parseTimestamp accepts HH:MM:SS,mmm and HH:MM:SS.mmm.
func parseTimestamp(s string) (float64, bool) {
	sep := ","
	if !strings.Contains(s, ",") {
		sep = "."
	}
	main, frac, found := strings.Cut(s, sep)
	if !found {
		return 0, false
	}
	hms := strings.Split(main, ":")
	if len(hms) != 3 {
		return 0, false
	}
	var secs float64
	for _, p := range hms {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, false
		}
		secs = secs*60 + float64(v)
	}
	ms, err := strconv.Atoi(frac)
	if err != nil || ms < 0 || len(frac) != 3 {
		return 0, false
	}
	return secs + float64(ms)/1000, true
}

// Filename derives a download file name from the original upload's name.
func Filename(original, target string) string {
	base := "transcription"
	if original != "" {
		base = original
		if dot := strings.LastIndex(base, "."); dot > 0 {
			base = base[:dot]
		}
	}
	return fmt.Sprintf("%s%s", base, Extension(target))
}
