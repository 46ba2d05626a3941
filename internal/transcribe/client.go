// Package transcribe converts finalized recordings into text using a local
// whisper.cpp server, which exposes a batch inference API at POST /inference.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"jd-interviewer/internal/audio"
	"jd-interviewer/internal/utils"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	inferencePath = "/inference"

	maxLogLength = 120
)

// Client talks to a whisper.cpp server. The server owns the model; the
// client only uploads WAV audio and reads back text.
type Client struct {
	serverURL string
	model     string
	language  string
	logger    *zap.Logger

	HTTPClient *http.Client
}

type inferenceResponse struct {
	Text  string `mapstructure:"text"`
	Error string `mapstructure:"error"`
}

// New creates a transcription client for the whisper.cpp server at serverURL
// (for example "http://localhost:8080"). Model and language are optional
// hints forwarded with each request.
func New(serverURL, model, language string, logger *zap.Logger) (*Client, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, errors.New("whisper server url is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		serverURL: serverURL,
		model:     strings.TrimSpace(model),
		language:  strings.TrimSpace(language),
		logger:    logger,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Transcribe uploads the artifact as multipart form data and returns the
// transcribed text, trimmed of surrounding whitespace. A transcription that
// trims to an empty string is returned as-is, deciding what to do with an
// empty answer is the caller's business.
func (c *Client) Transcribe(ctx context.Context, artifact *audio.Artifact) (string, error) {
	if artifact == nil || artifact.Empty() {
		return "", errors.New("audio artifact is empty")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "answer.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}

	if _, err := fw.Write(artifact.Data); err != nil {
		return "", fmt.Errorf("write wav data: %w", err)
	}

	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("write response_format field: %w", err)
	}

	if c.language != "" {
		if err := mw.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("write language field: %w", err)
		}
	}

	if c.model != "" {
		if err := mw.WriteField("model", c.model); err != nil {
			return "", fmt.Errorf("write model field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+inferencePath, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Debug("whisper inference request",
		zap.String("url", req.URL.String()),
		zap.Int("wav_bytes", len(artifact.Data)),
		zap.Duration("audio_duration", artifact.Duration()),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper server request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper server bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), maxLogLength))
	}

	// The server's JSON shape varies between builds, so decode into a loose
	// map first and pick out the known fields.
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("parse whisper response: %w", err)
	}

	var result inferenceResponse
	if err := mapstructure.Decode(payload, &result); err != nil {
		return "", fmt.Errorf("decode whisper response: %w", err)
	}

	if result.Error != "" {
		return "", fmt.Errorf("whisper server error: %s", result.Error)
	}

	text := strings.TrimSpace(result.Text)

	c.logger.Debug("whisper inference response",
		zap.Int("transcript_length", utf8.RuneCountInString(text)),
		zap.String("transcript_preview", utils.TruncateForLog(text, maxLogLength)),
	)

	return text, nil
}
