package config

import (
	"os"
	"strings"

	"github.com/scribed-io/scribed/internal/audio"
	"github.com/scribed-io/scribed/internal/pipeline"
	"github.com/scribed-io/scribed/internal/transcriber"
)

func (c *Config) ToTranscriberConfig() transcriber.Config {
	return transcriber.Config{
		Provider: c.Transcription.Provider,
		APIKey:   c.resolveAPIKeyForProvider(c.Transcription.Provider),
		Language: c.Transcription.Language,
		Model:    c.Transcription.Model,
	}
}

func (c *Config) ToSegmenterConfig() audio.SegmenterConfig {
	seg := audio.DefaultSegmenterConfig()
	if c.Pipeline.MaxSegmentDuration > 0 {
		seg.MaxSegmentDuration = c.Pipeline.MaxSegmentDuration
	}
	if c.Pipeline.SpeechThreshold > 0 {
		seg.SpeechThreshold = float32(c.Pipeline.SpeechThreshold)
	}
	if c.Pipeline.MinSilence > 0 {
		seg.MinSilence = c.Pipeline.MinSilence
	}
	if c.Pipeline.SpeechPad > 0 {
		seg.SpeechPad = c.Pipeline.SpeechPad
	}
	return seg
}

func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Workers:    c.Pipeline.Workers,
		MaxRetries: c.Pipeline.MaxRetries,
		Retention:  c.Pipeline.Retention,
		Segmenter:  c.ToSegmenterConfig(),
	}
}

// resolveAPIKeyForProvider checks the config first, then the provider's
// conventional environment variable.
func (c *Config) resolveAPIKeyForProvider(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	return os.Getenv(strings.ToUpper(providerName) + "_API_KEY")
}
