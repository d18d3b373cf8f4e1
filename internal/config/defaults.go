package config

import "time"

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             ":8585",
			MaxUploadBytes:   256 << 20,
			ShutdownTimeout:  10 * time.Second,
			SubscriberBuffer: 256,
		},
		Pipeline: PipelineConfig{
			Workers:            4,
			MaxRetries:         2,
			Retention:          30 * time.Minute,
			MaxSegmentDuration: 5 * time.Minute,
			SpeechThreshold:    0.01,
			MinSilence:         600 * time.Millisecond,
			SpeechPad:          50 * time.Millisecond,
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Language: "",
			Model:    "whisper-1",
		},
		Providers: make(map[string]ProviderConfig),
	}
}
