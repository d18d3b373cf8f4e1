package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/scribed-io/scribed/internal/config"
)

// AllProviders is the list of supported transcription providers.
var AllProviders = []string{"openai"}

// providerDisplayNames maps provider IDs to human-readable names
var providerDisplayNames = map[string]string{
	"openai": "OpenAI",
}

func getProviderDisplayName(providerName string) string {
	if name, ok := providerDisplayNames[providerName]; ok {
		return name
	}
	return providerName
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func editProviders(cfg *config.Config) error {
	providerName := cfg.Transcription.Provider
	if providerName == "" {
		providerName = AllProviders[0]
	}

	if len(AllProviders) > 1 {
		options := make([]huh.Option[string], 0, len(AllProviders))
		for _, p := range AllProviders {
			options = append(options, huh.NewOption(getProviderDisplayName(p), p))
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Transcription provider").
					Options(options...).
					Value(&providerName),
			),
		).WithTheme(getTheme())
		if err := form.Run(); err != nil {
			return err
		}
	}

	apiKey, err := inputAPIKey(providerName, cfg)
	if err != nil {
		return err
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	if apiKey != "" {
		cfg.Providers[providerName] = config.ProviderConfig{APIKey: apiKey}
	}
	cfg.Transcription.Provider = providerName
	return nil
}

func inputAPIKey(providerName string, cfg *config.Config) (string, error) {
	displayName := getProviderDisplayName(providerName)

	if pc, ok := cfg.Providers[providerName]; ok && pc.APIKey != "" {
		var update bool
		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s key is set (%s). Replace it?", displayName, maskAPIKey(pc.APIKey))).
					Affirmative("Replace").
					Negative("Keep").
					Value(&update),
			),
		).WithTheme(getTheme())

		if err := confirmForm.Run(); err != nil {
			return "", err
		}
		if !update {
			return "", nil
		}
	}

	var apiKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API Key", displayName)).
				Description(fmt.Sprintf("Enter your %s API key", displayName)).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("API key is required")
					}
					return nil
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	return apiKey, nil
}

func editTranscription(cfg *config.Config) error {
	model := cfg.Transcription.Model
	language := cfg.Transcription.Language

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription model").
				Options(
					huh.NewOption("whisper-1 - Whisper large, verbose timestamps", "whisper-1"),
					huh.NewOption("gpt-4o-transcribe - higher accuracy, text only", "gpt-4o-transcribe"),
					huh.NewOption("gpt-4o-mini-transcribe - faster, text only", "gpt-4o-mini-transcribe"),
				).
				Value(&model),
			huh.NewSelect[string]().
				Title("Language").
				Description("Language hint for transcription").
				Options(getLanguageOptions()...).
				Value(&language),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Model = model
	cfg.Transcription.Language = language
	return nil
}

func getLanguageOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Auto-detect", ""),
		huh.NewOption("English", "en"),
		huh.NewOption("Spanish", "es"),
		huh.NewOption("French", "fr"),
		huh.NewOption("German", "de"),
		huh.NewOption("Italian", "it"),
		huh.NewOption("Portuguese", "pt"),
		huh.NewOption("Dutch", "nl"),
		huh.NewOption("Japanese", "ja"),
		huh.NewOption("Korean", "ko"),
		huh.NewOption("Chinese", "zh"),
	}
}

func editServer(cfg *config.Config) error {
	addr := cfg.Server.Addr
	uploadMB := strconv.FormatInt(cfg.Server.MaxUploadBytes>>20, 10)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("host:port the HTTP server binds to").
				Value(&addr).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("address is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Max upload size (MB)").
				Value(&uploadMB).
				Validate(validatePositiveInt),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.Addr = addr
	mb, _ := strconv.ParseInt(uploadMB, 10, 64)
	cfg.Server.MaxUploadBytes = mb << 20
	return nil
}

func editPipeline(cfg *config.Config) error {
	workers := strconv.Itoa(cfg.Pipeline.Workers)
	retries := strconv.Itoa(cfg.Pipeline.MaxRetries)
	maxSegment := cfg.Pipeline.MaxSegmentDuration.String()
	retention := cfg.Pipeline.Retention.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Transcription workers").
				Description("Concurrent segment transcriptions across all jobs").
				Value(&workers).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Max retries per segment").
				Value(&retries).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("must be a non-negative integer")
					}
					return nil
				}),
			huh.NewInput().
				Title("Max segment duration").
				Description("Duration like 5m or 90s").
				Value(&maxSegment).
				Validate(validateDuration),
			huh.NewInput().
				Title("Job retention").
				Description("How long finished jobs stay queryable").
				Value(&retention).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Pipeline.Workers, _ = strconv.Atoi(workers)
	cfg.Pipeline.MaxRetries, _ = strconv.Atoi(retries)
	cfg.Pipeline.MaxSegmentDuration, _ = time.ParseDuration(maxSegment)
	cfg.Pipeline.Retention, _ = time.ParseDuration(retention)
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fmt.Errorf("must be a positive duration (e.g. 5m)")
	}
	return nil
}
