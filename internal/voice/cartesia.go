package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/qoodeng/wolfe/internal/httpkit"
)

const (
	cartesiaBaseURL = "https://api.cartesia.ai"
	cartesiaVersion = "2024-06-10"
)

// maxAudioResponse caps a single synthesized utterance at 16 MiB.
const maxAudioResponse = 16 << 20

// CartesiaSynthesizer implements Synthesizer against Cartesia's
// bytes endpoint, returning a full utterance of PCM audio per call.
type CartesiaSynthesizer struct {
	apiKey  string
	voiceID string
	modelID string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewCartesiaSynthesizer creates a synthesizer. An empty baseURL uses
// the public API.
func NewCartesiaSynthesizer(apiKey, voiceID, modelID, baseURL string, logger *slog.Logger) (*CartesiaSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("cartesia: api key is required")
	}
	if voiceID == "" {
		return nil, fmt.Errorf("cartesia: voice id is required")
	}
	if modelID == "" {
		modelID = "sonic-english"
	}
	if baseURL == "" {
		baseURL = cartesiaBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CartesiaSynthesizer{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: modelID,
		baseURL: baseURL,
		client:  httpkit.NewClient(httpkit.WithTimeout(60 * time.Second)),
		logger:  logger.With("provider", "cartesia"),
	}, nil
}

type cartesiaRequest struct {
	ModelID    string         `json:"model_id"`
	Transcript string         `json:"transcript"`
	Voice      cartesiaVoice  `json:"voice"`
	Output     cartesiaOutput `json:"output_format"`
}

type cartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutput struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

// Synthesize renders text as 16 kHz PCM WAV audio.
func (c *CartesiaSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(cartesiaRequest{
		ModelID:    c.modelID,
		Transcript: text,
		Voice:      cartesiaVoice{Mode: "id", ID: c.voiceID},
		Output: cartesiaOutput{
			Container:  "wav",
			Encoding:   "pcm_s16le",
			SampleRate: 16000,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cartesia: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cartesia: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cartesia: synthesize: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cartesia: synthesize: status %d: %s",
			resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 4096))
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioResponse))
	if err != nil {
		return nil, fmt.Errorf("cartesia: read audio: %w", err)
	}

	c.logger.Debug("utterance synthesized",
		"text_len", len(text),
		"audio_bytes", len(audio),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return audio, nil
}
