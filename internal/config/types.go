package config

import "time"

type Config struct {
	Server        ServerConfig              `toml:"server"`
	Pipeline      PipelineConfig            `toml:"pipeline"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// ProviderConfig holds the API key for a provider.
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

type ServerConfig struct {
	Addr             string        `toml:"addr"`
	MaxUploadBytes   int64         `toml:"max_upload_bytes"`
	ShutdownTimeout  time.Duration `toml:"shutdown_timeout"`
	SubscriberBuffer int           `toml:"subscriber_buffer"` // per-stream event queue depth
}

type PipelineConfig struct {
	Workers            int           `toml:"workers"`              // parallel transcription calls
	MaxRetries         int           `toml:"max_retries"`          // per-segment transient retries
	Retention          time.Duration `toml:"retention"`            // terminal job lifetime
	MaxSegmentDuration time.Duration `toml:"max_segment_duration"` // forced cut limit
	SpeechThreshold    float64       `toml:"speech_threshold"`     // RMS energy floor for speech
	MinSilence         time.Duration `toml:"min_silence"`          // pause length for cut points
	SpeechPad          time.Duration `toml:"speech_pad"`
}

type TranscriptionConfig struct {
	Provider string `toml:"provider"`
	Language string `toml:"language"`
	Model    string `toml:"model"`
}
