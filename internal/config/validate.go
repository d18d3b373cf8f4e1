package config

import "fmt"

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("invalid server.addr: empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid server.max_upload_bytes: %d", c.Server.MaxUploadBytes)
	}
	if c.Server.SubscriberBuffer <= 0 {
		return fmt.Errorf("invalid server.subscriber_buffer: %d", c.Server.SubscriberBuffer)
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("invalid pipeline.workers: %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("invalid pipeline.max_retries: %d", c.Pipeline.MaxRetries)
	}
	if c.Pipeline.Retention <= 0 {
		return fmt.Errorf("invalid pipeline.retention: %v", c.Pipeline.Retention)
	}
	if c.Pipeline.MaxSegmentDuration <= 0 {
		return fmt.Errorf("invalid pipeline.max_segment_duration: %v", c.Pipeline.MaxSegmentDuration)
	}
	if c.Pipeline.SpeechThreshold <= 0 || c.Pipeline.SpeechThreshold >= 1 {
		return fmt.Errorf("invalid pipeline.speech_threshold: %v (must be in (0, 1))", c.Pipeline.SpeechThreshold)
	}
	if c.Pipeline.MinSilence <= 0 {
		return fmt.Errorf("invalid pipeline.min_silence: %v", c.Pipeline.MinSilence)
	}

	switch c.Transcription.Provider {
	case "openai":
		if c.resolveAPIKeyForProvider("openai") == "" {
			return fmt.Errorf("OpenAI API key required: not found in config (providers.openai.api_key) or environment variable (OPENAI_API_KEY)")
		}
		if c.Transcription.Language != "" && !isValidLanguageCode(c.Transcription.Language) {
			return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", c.Transcription.Language)
		}
	case "":
		return fmt.Errorf("invalid transcription.provider: empty")
	default:
		return fmt.Errorf("unsupported transcription.provider: %s", c.Transcription.Provider)
	}

	return nil
}

// isValidLanguageCode accepts two-letter ISO-639-1 codes.
func isValidLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
