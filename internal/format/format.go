// Package format renders a canonical transcript into downloadable subtitle
// and text formats. All converters are pure functions over the unit slice.
package format

import (
	"fmt"
	"strings"

	"github.com/scribed-io/scribed/internal/transcript"
)

const (
	SRT = "srt"
	VTT = "vtt"
	LRC = "lrc"
	TXT = "txt"
)

// UnsupportedFormatError marks an unknown target format string.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q (supported: srt, lrc, vtt, txt)", e.Format)
}

// Render converts units into the requested format.
func Render(units []transcript.Unit, target string) ([]byte, error) {
	switch target {
	case SRT:
		return []byte(ToSRT(units)), nil
	case VTT:
		return []byte(ToVTT(units)), nil
	case LRC:
		return []byte(ToLRC(units)), nil
	case TXT:
		return []byte(ToTXT(units)), nil
	default:
		return nil, &UnsupportedFormatError{Format: target}
	}
}

// Extension returns the file extension for a supported format, dot included.
func Extension(target string) string {
	return "." + target
}

// MediaType returns the response content type for a supported format.
func MediaType(target string) string {
	switch target {
	case SRT:
		return "application/x-subrip"
	case VTT:
		return "text/vtt"
	default:
		return "text/plain"
	}
}

// ToSRT renders units as SubRip: 1-based index, comma-millisecond timecodes,
// text line, blank separator.
func ToSRT(units []transcript.Unit) string {
	var b strings.Builder
	for i, u := range units {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", Timestamp(u.Start, ','), Timestamp(u.End, ','))
		b.WriteString(u.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// ToVTT renders units as WebVTT: header, blank line, period-millisecond
// timecodes, text line, blank separator.
func ToVTT(units []transcript.Unit) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, u := range units {
		fmt.Fprintf(&b, "%s --> %s\n", Timestamp(u.Start, '.'), Timestamp(u.End, '.'))
		b.WriteString(u.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// ToLRC renders one [mm:ss.xx]text line per unit, hundredths precision,
// no blank separators.
func ToLRC(units []transcript.Unit) string {
	var b strings.Builder
	for _, u := range units {
		secs := u.Start
		if secs < 0 {
			secs = 0
		}
		total := int(secs)
		hundredths := int((secs-float64(total))*100 + 0.5)
		if hundredths >= 100 {
			hundredths = 0
			total++
		}
		fmt.Fprintf(&b, "[%02d:%02d.%02d]%s\n", total/60, total%60, hundredths, u.Text)
	}
	return b.String()
}

// ToTXT renders one text line per unit, no timing.
func ToTXT(units []transcript.Unit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// Timestamp formats seconds as HH:MM:SS<sep>mmm with rounding carry.
func Timestamp(seconds float64, sep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	millis := int((seconds-float64(total))*1000 + 0.5)
	if millis >= 1000 {
		millis -= 1000
		total++
	}
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", total/3600, total%3600/60, total%60, sep, millis)
}
