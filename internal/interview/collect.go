package interview

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"jd-interviewer/internal/audio"
	"jd-interviewer/internal/utils"

	"go.uber.org/zap"
)

// Transcriber converts a finalized audio artifact into text.
type Transcriber interface {
	Transcribe(ctx context.Context, artifact *audio.Artifact) (string, error)
}

const collectorMaxLogLength = 120

// Collector obtains one answer per question, delegating voice answers to a
// Transcriber. It holds no session state and never persists audio or text;
// durable storage of incidental artifacts is the caller's concern.
type Collector struct {
	transcriber Transcriber
	logger      *zap.Logger
}

func NewCollector(transcriber Transcriber, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Collector{
		transcriber: transcriber,
		logger:      logger,
	}
}

// CollectText accepts a ready-made text answer. The trimmed text must be
// non-empty; a blank answer is a validation failure reported to the caller,
// which must re-prompt for the same question.
func (c *Collector) CollectText(question, text string) (Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Answer{}, fmt.Errorf("%w: question %q", ErrEmptyAnswer, utils.TruncateForLog(question, collectorMaxLogLength))
	}

	return Answer{Modality: ModalityText, Text: text}, nil
}

// CollectVoice transcribes a finalized recording and uses the returned text
// verbatim. An empty transcription is accepted as a valid, if unhelpful,
// answer; there is no re-validation loop for voice. Transcription failures
// are recoverable: the question stays unanswered and may be retried.
func (c *Collector) CollectVoice(ctx context.Context, question string, artifact *audio.Artifact) (Answer, error) {
	if artifact == nil || artifact.Empty() {
		return Answer{}, ErrMissingAudio
	}

	if c.transcriber == nil {
		return Answer{}, fmt.Errorf("%w: no transcriber configured", ErrTranscription)
	}

	text, err := c.transcriber.Transcribe(ctx, artifact)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	c.logger.Debug("voice answer transcribed",
		zap.String("question", utils.TruncateForLog(question, collectorMaxLogLength)),
		zap.Int("transcript_length", utf8.RuneCountInString(text)),
		zap.String("transcript_preview", utils.TruncateForLog(text, collectorMaxLogLength)),
	)

	return Answer{Modality: ModalityVoice, Text: text}, nil
}
