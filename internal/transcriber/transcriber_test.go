package transcriber

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestNew(t *testing.T) {
	adapter, err := New(Config{Provider: "openai", APIKey: "sk-test", Model: "whisper-1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := adapter.(*OpenAIAdapter); !ok {
		t.Errorf("adapter type = %T, want *OpenAIAdapter", adapter)
	}

	if _, err := New(Config{Provider: "openai"}); err == nil {
		t.Error("missing API key accepted")
	}
	if _, err := New(Config{Provider: "carrier-pigeon", APIKey: "x"}); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 2.0, -2.0}
	data := encodeWAV(samples, 16000)

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d, want 16000", rate)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bit depth = %d, want 16", bits)
	}

	if len(data) != 44+len(samples)*2 {
		t.Fatalf("encoded size = %d, want %d", len(data), 44+len(samples)*2)
	}

	pcm := data[44:]
	if v := int16(binary.LittleEndian.Uint16(pcm[0:2])); v != 0 {
		t.Errorf("sample 0 = %d, want 0", v)
	}
	// Out-of-range samples clamp instead of wrapping.
	if v := int16(binary.LittleEndian.Uint16(pcm[6:8])); v != 32767 {
		t.Errorf("clamped sample = %d, want 32767", v)
	}
	if v := int16(binary.LittleEndian.Uint16(pcm[8:10])); v != -32767 {
		t.Errorf("clamped sample = %d, want -32767", v)
	}
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, true},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, true},
		{"timeout", &openai.APIError{HTTPStatusCode: 408}, false},
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, false},
		{"server error", &openai.APIError{HTTPStatusCode: 500}, false},
		{"network error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAPIError(tt.err)
			if got == nil {
				t.Fatal("classified error is nil")
			}
			if IsFatalTranscriptionError(got) != tt.fatal {
				t.Errorf("fatal = %v, want %v", !tt.fatal, tt.fatal)
			}
		})
	}
}

func TestFatalTranscriptionError(t *testing.T) {
	cause := errors.New("boom")
	err := NewFatalTranscriptionError(cause)

	if !IsFatalTranscriptionError(err) {
		t.Error("wrapped error not recognized as fatal")
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap lost the cause")
	}
	if IsFatalTranscriptionError(cause) {
		t.Error("bare error recognized as fatal")
	}
	if NewFatalTranscriptionError(nil) != nil {
		t.Error("wrapping nil should stay nil")
	}
}
