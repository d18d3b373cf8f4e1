package testutil

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/scribed-io/scribed/internal/audio"
	"github.com/scribed-io/scribed/internal/config"
	"github.com/scribed-io/scribed/internal/transcript"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Transcription.Provider = "openai"
	cfg.Transcription.Model = "whisper-1"
	cfg.Providers = map[string]config.ProviderConfig{
		"openai": {APIKey: "test-api-key"},
	}
	return cfg
}

// TestConfigWithInvalidValues returns a config with invalid values for testing validation
func TestConfigWithInvalidValues() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:           "", // Invalid
			MaxUploadBytes: 0,  // Invalid
		},
		Pipeline: config.PipelineConfig{
			Workers:    0,  // Invalid
			MaxRetries: -1, // Invalid
			Retention:  0,  // Invalid
		},
		Transcription: config.TranscriptionConfig{
			Provider: "", // Invalid
			Model:    "", // Invalid
		},
	}
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// CaptureOutput captures stdout for testing
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}

// SpeechClip synthesizes a mono clip of the given total duration with a 440 Hz
// tone during each [start, end) span and silence elsewhere.
func SpeechClip(sampleRate int, duration float64, spans ...[2]float64) audio.Clip {
	samples := make([]float32, int(duration*float64(sampleRate)))
	for _, span := range spans {
		lo := int(span[0] * float64(sampleRate))
		hi := int(span[1] * float64(sampleRate))
		if hi > len(samples) {
			hi = len(samples)
		}
		for i := lo; i < hi; i++ {
			samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		}
	}
	return audio.Clip{SampleRate: sampleRate, Samples: samples}
}

// WAVBytes encodes a clip as a 16-bit PCM WAV file, the format the decoder
// and upload endpoint accept.
func WAVBytes(t *testing.T, clip audio.Clip) []byte {
	t.Helper()

	var buf bytes.Buffer
	dataSize := len(clip.Samples) * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(clip.SampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range clip.Samples {
		v := s
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.Write(&buf, binary.LittleEndian, int16(v*32767))
	}

	return buf.Bytes()
}

// MockAdapter implements transcriber.Adapter for testing
type MockAdapter struct {
	TranscribeFunc func(ctx context.Context, seg audio.Segment) ([]transcript.Unit, error)
	Delay          time.Duration

	mu    sync.Mutex
	calls []audio.Segment
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

func (m *MockAdapter) Transcribe(ctx context.Context, seg audio.Segment) ([]transcript.Unit, error) {
	m.mu.Lock()
	m.calls = append(m.calls, seg)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, seg)
	}
	return []transcript.Unit{
		{Start: 0, End: seg.End - seg.Start, Text: fmt.Sprintf("segment %d", seg.Index)},
	}, nil
}

// Calls returns a copy of the segments Transcribe was called with
func (m *MockAdapter) Calls() []audio.Segment {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]audio.Segment, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns how many times Transcribe was called
func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// FailTimes makes the first n calls per segment fail with err, after which
// the default response is returned.
func (m *MockAdapter) FailTimes(n int, err error) {
	var mu sync.Mutex
	attempts := make(map[int]int)
	m.TranscribeFunc = func(ctx context.Context, seg audio.Segment) ([]transcript.Unit, error) {
		mu.Lock()
		attempts[seg.Index]++
		count := attempts[seg.Index]
		mu.Unlock()
		if count <= n {
			return nil, err
		}
		return []transcript.Unit{
			{Start: 0, End: seg.End - seg.Start, Text: fmt.Sprintf("segment %d", seg.Index)},
		}, nil
	}
}
