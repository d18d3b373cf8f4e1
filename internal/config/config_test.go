package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/scribed-io/scribed/internal/config"
	"github.com/scribed-io/scribed/internal/testutil"
)

func TestDefaultConfigIsValidWithKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers["openai"] = config.ProviderConfig{APIKey: "sk-test"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	content := `
[server]
addr = ":9999"

[pipeline]
workers = 8
max_segment_duration = "45s"

[transcription]
provider = "openai"
model = "whisper-1"
language = "en"

[providers.openai]
api_key = "sk-from-file"
`
	path := testutil.CreateTempConfigFile(t, content)

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q, want :9999", cfg.Server.Addr)
	}
	if cfg.Pipeline.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.MaxSegmentDuration != 45*time.Second {
		t.Errorf("max segment duration = %v, want 45s", cfg.Pipeline.MaxSegmentDuration)
	}

	// Untouched settings keep their defaults.
	if cfg.Pipeline.MaxRetries != 2 {
		t.Errorf("max retries = %d, want default 2", cfg.Pipeline.MaxRetries)
	}
	if cfg.Server.SubscriberBuffer != 256 {
		t.Errorf("subscriber buffer = %d, want default 256", cfg.Server.SubscriberBuffer)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile("/nonexistent/config.toml")
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	if err := testutil.TestConfigWithInvalidValues().Validate(); err == nil {
		t.Fatal("invalid config passed validation")
	}

	mutations := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty addr", func(c *config.Config) { c.Server.Addr = "" }},
		{"zero workers", func(c *config.Config) { c.Pipeline.Workers = 0 }},
		{"negative retries", func(c *config.Config) { c.Pipeline.MaxRetries = -1 }},
		{"zero retention", func(c *config.Config) { c.Pipeline.Retention = 0 }},
		{"threshold out of range", func(c *config.Config) { c.Pipeline.SpeechThreshold = 1.5 }},
		{"unknown provider", func(c *config.Config) { c.Transcription.Provider = "espeak" }},
		{"bad language code", func(c *config.Config) { c.Transcription.Language = "english" }},
		{"missing api key", func(c *config.Config) { c.Providers = nil }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			cfg := testutil.TestConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("mutated config passed validation")
			}
		})
	}
}

func TestAPIKeyFallsBackToEnv(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers = nil

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	if err := cfg.Validate(); err != nil {
		t.Errorf("env API key not picked up: %v", err)
	}

	tc := cfg.ToTranscriberConfig()
	if tc.APIKey != "sk-from-env" {
		t.Errorf("transcriber API key = %q, want env value", tc.APIKey)
	}
}

func TestConfigKeyTakesPrecedenceOverEnv(t *testing.T) {
	cfg := testutil.TestConfig()
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	if got := cfg.ToTranscriberConfig().APIKey; got != "test-api-key" {
		t.Errorf("API key = %q, want the config file value", got)
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Pipeline.Workers = 3
	cfg.Pipeline.MaxSegmentDuration = 90 * time.Second
	cfg.Pipeline.SpeechThreshold = 0.05

	pc := cfg.ToPipelineConfig()
	if pc.Workers != 3 {
		t.Errorf("workers = %d", pc.Workers)
	}
	if pc.Segmenter.MaxSegmentDuration != 90*time.Second {
		t.Errorf("max segment duration = %v", pc.Segmenter.MaxSegmentDuration)
	}
	if pc.Segmenter.SpeechThreshold != 0.05 {
		t.Errorf("speech threshold = %v", pc.Segmenter.SpeechThreshold)
	}
	// Settings the file does not expose keep segmenter defaults.
	if pc.Segmenter.FrameSize == 0 || pc.Segmenter.MinSpeech == 0 {
		t.Error("segmenter defaults lost in conversion")
	}
}
