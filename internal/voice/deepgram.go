package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/qoodeng/wolfe/internal/httpkit"
)

const deepgramBaseURL = "https://api.deepgram.com"

// DeepgramTranscriber implements Transcriber against Deepgram's
// pre-recorded transcription endpoint. Each utterance is sent as one
// request once the caller stops speaking.
type DeepgramTranscriber struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewDeepgramTranscriber creates a transcriber. An empty baseURL uses
// the public API.
func NewDeepgramTranscriber(apiKey, model, baseURL string, logger *slog.Logger) (*DeepgramTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram: api key is required")
	}
	if model == "" {
		model = "nova-2"
	}
	if baseURL == "" {
		baseURL = deepgramBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeepgramTranscriber{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  httpkit.NewClient(httpkit.WithTimeout(30 * time.Second)),
		logger:  logger.With("provider", "deepgram"),
	}, nil
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends one utterance and returns its transcript. An empty
// transcript is not an error; silence transcribes to nothing.
func (d *DeepgramTranscriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	q := url.Values{}
	q.Set("model", d.model)
	q.Set("smart_format", "true")

	endpoint := d.baseURL + "/v1/listen?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("deepgram: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram: transcribe: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram: transcribe: status %d: %s",
			resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 4096))
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	var parsed deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("deepgram: decode response: %w", err)
	}

	var transcript string
	if len(parsed.Results.Channels) > 0 && len(parsed.Results.Channels[0].Alternatives) > 0 {
		transcript = parsed.Results.Channels[0].Alternatives[0].Transcript
	}

	d.logger.Debug("utterance transcribed",
		"audio_bytes", len(audio),
		"transcript_len", len(transcript),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return transcript, nil
}
