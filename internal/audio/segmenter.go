package audio

import (
	"math"
	"time"
)

// Segment is one bounded time-slice of speech, the unit of work handed to a
// transcription backend. Times are seconds on the source clip's timeline.
type Segment struct {
	Index int
	Start float64
	End   float64
	Clip  Clip
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// SegmenterConfig tunes voice-activity detection and cut placement.
type SegmenterConfig struct {
	MaxSegmentDuration time.Duration
	SpeechThreshold    float32       // RMS energy above this counts as speech
	MinSpeech          time.Duration // shorter speech bursts are ignored
	MinSilence         time.Duration // shorter gaps do not qualify as pauses
	SpeechPad          time.Duration // padding kept around detected speech
	FrameSize          time.Duration // analysis window
}

func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		MaxSegmentDuration: 5 * time.Minute,
		SpeechThreshold:    0.01,
		MinSpeech:          250 * time.Millisecond,
		MinSilence:         600 * time.Millisecond,
		SpeechPad:          50 * time.Millisecond,
		FrameSize:          30 * time.Millisecond,
	}
}

type span struct {
	start, end float64
}

// Split cuts a clip into ordered, contiguous segments covering all detected
// speech. Boundaries fall inside pauses; a cut is forced at the duration
// limit only when a pause-free stretch exceeds it, preferring the latest
// pause in the last fifth of the window when one exists. Returns ErrNoSpeech
// when the clip contains no voice activity.
func Split(clip *Clip, cfg SegmenterConfig) ([]Segment, error) {
	spans := speechSpans(clip, cfg)
	if len(spans) == 0 {
		return nil, ErrNoSpeech
	}

	maxDur := cfg.MaxSegmentDuration.Seconds()
	if maxDur <= 0 {
		maxDur = DefaultSegmenterConfig().MaxSegmentDuration.Seconds()
	}

	// Cut candidates are the midpoints of qualifying pauses.
	var pauses []float64
	for i := 1; i < len(spans); i++ {
		pauses = append(pauses, (spans[i-1].end+spans[i].start)/2)
	}

	var segs []Segment
	segStart := spans[0].start
	end := spans[len(spans)-1].end
	for {
		if end-segStart <= maxDur {
			segs = appendSegment(segs, clip, segStart, end)
			break
		}
		cut := pickCut(pauses, segStart, maxDur)
		segs = appendSegment(segs, clip, segStart, cut)
		segStart = cut
	}
	return segs, nil
}

// pickCut chooses a boundary for the window [segStart, segStart+maxDur]:
// the latest pause in the final 20% of the window, else the latest pause
// anywhere in the window, else a forced cut at the limit.
func pickCut(pauses []float64, segStart, maxDur float64) float64 {
	limit := segStart + maxDur
	preferred := segStart + 0.8*maxDur
	best := math.NaN()
	for _, p := range pauses {
		if p <= segStart || p > limit {
			continue
		}
		if math.IsNaN(best) || p > best {
			best = p
		}
	}
	if !math.IsNaN(best) && best >= preferred {
		return best
	}
	if !math.IsNaN(best) {
		return best
	}
	return limit
}

func appendSegment(segs []Segment, clip *Clip, start, end float64) []Segment {
	return append(segs, Segment{
		Index: len(segs),
		Start: start,
		End:   end,
		Clip:  clip.Slice(start, end),
	})
}

// speechSpans scans the clip frame by frame and returns padded, merged
// speech intervals. Gaps shorter than MinSilence are bridged; bursts
// shorter than MinSpeech are discarded.
func speechSpans(clip *Clip, cfg SegmenterConfig) []span {
	frame := int(cfg.FrameSize.Seconds() * float64(clip.SampleRate))
	if frame <= 0 {
		frame = clip.SampleRate / 33
	}
	if frame <= 0 {
		return nil
	}

	var raw []span
	var cur *span
	for off := 0; off < len(clip.Samples); off += frame {
		hi := off + frame
		if hi > len(clip.Samples) {
			hi = len(clip.Samples)
		}
		t0 := float64(off) / float64(clip.SampleRate)
		t1 := float64(hi) / float64(clip.SampleRate)
		if calculateRMS(clip.Samples[off:hi]) > cfg.SpeechThreshold {
			if cur == nil {
				raw = append(raw, span{start: t0, end: t1})
				cur = &raw[len(raw)-1]
			} else {
				cur.end = t1
			}
		} else {
			cur = nil
		}
	}

	minSilence := cfg.MinSilence.Seconds()
	minSpeech := cfg.MinSpeech.Seconds()
	pad := cfg.SpeechPad.Seconds()

	var merged []span
	for _, s := range raw {
		if len(merged) > 0 && s.start-merged[len(merged)-1].end < minSilence {
			merged[len(merged)-1].end = s.end
			continue
		}
		merged = append(merged, s)
	}

	var out []span
	for _, s := range merged {
		if s.end-s.start < minSpeech {
			continue
		}
		s.start -= pad
		s.end += pad
		if s.start < 0 {
			s.start = 0
		}
		if max := clip.Duration(); s.end > max {
			s.end = max
		}
		out = append(out, s)
	}
	return out
}

// calculateRMS computes the root mean square energy of a sample window.
func calculateRMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}
