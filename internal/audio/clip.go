package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Clip is decoded mono audio ready for voice-activity analysis.
type Clip struct {
	SampleRate int
	Samples    []float32
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Slice returns the samples between start and end (seconds), clamped to the clip.
func (c *Clip) Slice(start, end float64) Clip {
	lo := int(start * float64(c.SampleRate))
	hi := int(end * float64(c.SampleRate))
	if lo < 0 {
		lo = 0
	}
	if hi > len(c.Samples) {
		hi = len(c.Samples)
	}
	if lo > hi {
		lo = hi
	}
	return Clip{SampleRate: c.SampleRate, Samples: c.Samples[lo:hi]}
}

// Decode parses a 16-bit PCM RIFF/WAVE byte stream into a mono Clip.
// Multi-channel input is downmixed by averaging channels.
func Decode(data []byte) (*Clip, error) {
	if len(data) < 44 {
		return nil, NewDecodeError(fmt.Errorf("input too short for WAV header: %d bytes", len(data)))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, NewDecodeError(fmt.Errorf("not a RIFF/WAVE stream"))
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
		haveFmt       bool
	)

	// Walk the chunk list. Only "fmt " and "data" matter here.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(data) {
			return nil, NewDecodeError(fmt.Errorf("truncated %q chunk", id))
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, NewDecodeError(fmt.Errorf("fmt chunk too short: %d bytes", size))
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 { // PCM only
				return nil, NewDecodeError(fmt.Errorf("unsupported WAV format code %d (PCM required)", format))
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt || pcm == nil {
		return nil, NewDecodeError(fmt.Errorf("missing fmt or data chunk"))
	}
	if bitsPerSample != 16 {
		return nil, NewDecodeError(fmt.Errorf("unsupported bit depth %d (16-bit PCM required)", bitsPerSample))
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, NewDecodeError(fmt.Errorf("invalid fmt chunk: channels=%d rate=%d", channels, sampleRate))
	}

	frameBytes := channels * 2
	frames := len(pcm) / frameBytes
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			p := i*frameBytes + ch*2
			sum += float64(int16(binary.LittleEndian.Uint16(pcm[p : p+2])))
		}
		samples[i] = float32(sum / float64(channels) / math.MaxInt16)
	}

	return &Clip{SampleRate: sampleRate, Samples: samples}, nil
}
