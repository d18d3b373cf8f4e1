package transcriber

import (
	"context"
	"fmt"
	"os"

	"github.com/scribed-io/scribed/internal/audio"
	"github.com/scribed-io/scribed/internal/transcript"
)

// Adapter converts one audio segment into timed text units. Returned unit
// times are relative to the segment's start; the caller re-bases them onto
// the job's global timeline. Implementations must be safe for concurrent use
// across independent segments.
type Adapter interface {
	Transcribe(ctx context.Context, seg audio.Segment) ([]transcript.Unit, error)
}

// Config selects and configures a transcription backend.
type Config struct {
	Provider string
	APIKey   string
	Language string
	Model    string
}

func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Model:    "whisper-1",
	}
}

// New creates the adapter for the configured provider.
func New(cfg Config) (Adapter, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// NewDefault builds an adapter from defaults plus the conventional
// environment variable for the API key.
func NewDefault() (Adapter, error) {
	cfg := DefaultConfig()
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	return New(cfg)
}
