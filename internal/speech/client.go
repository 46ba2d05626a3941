// Package speech synthesizes question audio through an OpenAI-compatible
// text-to-speech endpoint (POST /v1/audio/speech), as served by local engines
// such as kokoro. Synthesis is presentation-only and never touches session
// state.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jd-interviewer/internal/utils"

	"go.uber.org/zap"
)

const (
	speechPath = "/v1/audio/speech"

	defaultVoice = "af_heart"

	maxLogLength = 120
)

// Client talks to a local TTS server.
type Client struct {
	serverURL string
	model     string
	voice     string
	logger    *zap.Logger

	HTTPClient *http.Client
}

type speechRequest struct {
	Model          string `json:"model,omitempty"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// New creates a synthesis client for the TTS server at serverURL.
func New(serverURL, model, voice string, logger *zap.Logger) (*Client, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, errors.New("speech server url is required")
	}

	if voice = strings.TrimSpace(voice); voice == "" {
		voice = defaultVoice
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		serverURL: serverURL,
		model:     strings.TrimSpace(model),
		voice:     voice,
		logger:    logger,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Synthesize returns WAV audio for the given text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	payload, err := json.Marshal(speechRequest{
		Model:          c.model,
		Voice:          c.voice,
		Input:          text,
		ResponseFormat: "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+speechPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("speech synthesis request",
		zap.String("url", req.URL.String()),
		zap.String("voice", c.voice),
		zap.String("text_preview", utils.TruncateForLog(text, maxLogLength)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech server request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech server bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), maxLogLength))
	}

	if len(data) == 0 {
		return nil, errors.New("speech server returned no audio")
	}

	return data, nil
}
