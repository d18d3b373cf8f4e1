package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/scribed-io/scribed/internal/audio"
	"github.com/scribed-io/scribed/internal/transcript"
)

// OpenAIAdapter implements Adapter against the OpenAI Whisper API.
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(config Config) *OpenAIAdapter {
	return &OpenAIAdapter{
		client: openai.NewClient(config.APIKey),
		config: config,
	}
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, seg audio.Segment) ([]transcript.Unit, error) {
	if len(seg.Clip.Samples) == 0 {
		return nil, nil
	}

	req := openai.AudioRequest{
		Model:    a.config.Model,
		Reader:   bytes.NewReader(encodeWAV(seg.Clip.Samples, seg.Clip.SampleRate)),
		FilePath: "segment.wav",
		Language: a.config.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("openai-adapter: segment %d failed after %v: %v", seg.Index, duration, err)
		return nil, classifyAPIError(err)
	}

	units := make([]transcript.Unit, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		units = append(units, transcript.Unit{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	if len(units) == 0 && strings.TrimSpace(resp.Text) != "" {
		// Plain-text fallback: one unit spanning the whole segment.
		units = append(units, transcript.Unit{Start: 0, End: seg.Duration(), Text: strings.TrimSpace(resp.Text)})
	}

	log.Printf("openai-adapter: segment %d transcribed in %v (%d units)", seg.Index, duration, len(units))
	return units, nil
}

// classifyAPIError maps API failures onto the retry taxonomy: client errors
// other than rate limiting and timeouts will not succeed on retry.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return fmt.Errorf("openai transcription: %w", err)
		}
		if apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 {
			return NewFatalTranscriptionError(fmt.Errorf("openai transcription: %w", err))
		}
	}
	return fmt.Errorf("openai transcription: %w", err)
}
