package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"jd-interviewer/internal/ai"
	"jd-interviewer/internal/audio"
	"jd-interviewer/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionMaxLogLength = 200

// Session drives one end-to-end mock interview for a single candidate:
// question generation, per-question answer collection and the final batched
// evaluation. The pipeline is strictly sequential; a Session must be driven
// from a single goroutine. A completed Session is not reusable, construct a
// fresh one for another interview.
//
// Answers are keyed by question index, not by question text, so two
// textually identical generated questions keep separate answers.
type Session struct {
	id        string
	jd        string
	generator ai.Generator
	collector *Collector
	logger    *zap.Logger

	state     State
	questions []string
	answers   []Answer
	report    string
}

// Snapshot is an immutable read-only view of session state. The presentation
// layer sees only snapshots and the transition methods, never the mutable
// internals.
type Snapshot struct {
	ID        string
	State     State
	Questions []string
	Answers   []Answer
	Cursor    int
	Report    string
}

// NewSession creates a session over an immutable job description. The
// transcriber may be nil when voice answers are not available; voice
// submissions then fail with ErrTranscription.
func NewSession(jobDescription string, generator ai.Generator, transcriber Transcriber, logger *zap.Logger) (*Session, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, errors.New("job description must not be empty")
	}

	if generator == nil {
		return nil, errors.New("generator is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.NewString()

	return &Session{
		id:        id,
		jd:        jobDescription,
		generator: generator,
		collector: NewCollector(transcriber, logger),
		logger:    logger.With(zap.String("session_id", id)),
		state:     StateInitialized,
	}, nil
}

// ID returns the session identifier used for log correlation and artifact naming.
func (s *Session) ID() string { return s.id }

// State returns the current session state.
func (s *Session) State() State { return s.state }

// Start generates the question list from the job description. It is legal
// exactly once, on an initialized session. The question list is fixed after
// a successful Start and is never re-generated mid-session.
func (s *Session) Start(ctx context.Context) error {
	if s.state != StateInitialized {
		return fmt.Errorf("%w: start requires state %s, current %s", ErrInvalidState, StateInitialized, s.state)
	}

	prompt := buildQuestionPrompt(s.jd)

	s.logger.Debug("question generation request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, sessionMaxLogLength)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	questions := ExtractQuestions(raw)
	if len(questions) == 0 {
		return fmt.Errorf("%w: raw response %q", ErrNoQuestions, utils.TruncateForLog(raw, sessionMaxLogLength))
	}

	s.questions = questions
	s.answers = make([]Answer, 0, len(questions))
	s.state = StateCollecting

	s.logger.Info("questions generated", zap.Int("count", len(questions)))

	return nil
}

// CurrentQuestion returns the question at the cursor. The second return is
// false when the session is not collecting.
func (s *Session) CurrentQuestion() (string, bool) {
	if s.state != StateCollecting {
		return "", false
	}

	return s.questions[len(s.answers)], true
}

// SubmitText collects a text answer for the question at the cursor. On
// success the cursor advances by exactly one; on failure the state is
// untouched and the same question must be answered again.
func (s *Session) SubmitText(text string) error {
	question, ok := s.CurrentQuestion()
	if !ok {
		return fmt.Errorf("%w: submit requires state %s, current %s", ErrInvalidState, StateCollecting, s.state)
	}

	answer, err := s.collector.CollectText(question, text)
	if err != nil {
		return err
	}

	s.accept(answer)

	return nil
}

// SubmitVoice collects a voice answer for the question at the cursor,
// transcribing the finalized recording. Recoverable failures (missing audio,
// transcription errors) leave the cursor in place so the caller may retry or
// fall back to text.
func (s *Session) SubmitVoice(ctx context.Context, artifact *audio.Artifact) error {
	question, ok := s.CurrentQuestion()
	if !ok {
		return fmt.Errorf("%w: submit requires state %s, current %s", ErrInvalidState, StateCollecting, s.state)
	}

	answer, err := s.collector.CollectVoice(ctx, question, artifact)
	if err != nil {
		return err
	}

	s.accept(answer)

	return nil
}

func (s *Session) accept(answer Answer) {
	s.answers = append(s.answers, answer)

	s.logger.Info("answer accepted",
		zap.String("modality", string(answer.Modality)),
		zap.Int("cursor", len(s.answers)),
		zap.Int("total", len(s.questions)),
	)

	if len(s.answers) == len(s.questions) {
		s.state = StateEvaluating
	}
}

// Evaluate runs the single batched evaluation call. It is legal only once
// every question has an answer. The generated text becomes the report
// verbatim; no local post-processing of scores happens here. On generation
// failure the session stays in the evaluating state and Evaluate may be
// called again.
func (s *Session) Evaluate(ctx context.Context) error {
	if s.state != StateEvaluating {
		return fmt.Errorf("%w: evaluate requires state %s, current %s", ErrInvalidState, StateEvaluating, s.state)
	}

	prompt := BuildEvaluationPrompt(s.jd, s.pairs())

	s.logger.Debug("evaluation request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, sessionMaxLogLength)),
	)

	report, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	s.report = report
	s.state = StateCompleted

	s.logger.Info("evaluation completed", zap.Int("report_length", utf8.RuneCountInString(report)))

	return nil
}

// Report returns the evaluation report. The second return is false until the
// session has completed.
func (s *Session) Report() (string, bool) {
	if s.state != StateCompleted {
		return "", false
	}

	return s.report, true
}

func (s *Session) pairs() []QA {
	pairs := make([]QA, len(s.answers))
	for i, answer := range s.answers {
		pairs[i] = QA{Question: s.questions[i], Answer: answer}
	}

	return pairs
}

// Snapshot returns an immutable copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	questions := make([]string, len(s.questions))
	copy(questions, s.questions)

	answers := make([]Answer, len(s.answers))
	copy(answers, s.answers)

	return Snapshot{
		ID:        s.id,
		State:     s.state,
		Questions: questions,
		Answers:   answers,
		Cursor:    len(s.answers),
		Report:    s.report,
	}
}

// Pairs returns the collected question/answer pairs in question order.
func (s *Snapshot) Pairs() []QA {
	n := len(s.Answers)
	pairs := make([]QA, n)
	for i := 0; i < n; i++ {
		pairs[i] = QA{Question: s.Questions[i], Answer: s.Answers[i]}
	}

	return pairs
}
