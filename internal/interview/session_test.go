package interview

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type scriptedGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (g *scriptedGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	i := g.calls
	g.calls++

	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}

	return g.responses[i], nil
}

func (g *scriptedGenerator) Model() string { return "scripted" }

func newTestSession(t *testing.T, generator *scriptedGenerator, transcriber Transcriber) *Session {
	t.Helper()

	session, err := NewSession("Backend engineer role", generator, transcriber, zap.NewNop())
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	return session
}

func TestSessionEndToEnd(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{
		"1. Describe a caching strategy you used?\n2. How do you handle failures?",
		"Score: 40/50",
	}}

	session := newTestSession(t, generator, nil)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	question, ok := session.CurrentQuestion()
	if !ok || question != "Describe a caching strategy you used?" {
		t.Fatalf("unexpected first question: %q (ok=%v)", question, ok)
	}

	if err := session.SubmitText("I used an LRU cache"); err != nil {
		t.Fatalf("first answer: %v", err)
	}

	question, ok = session.CurrentQuestion()
	if !ok || question != "How do you handle failures?" {
		t.Fatalf("unexpected second question: %q (ok=%v)", question, ok)
	}

	if err := session.SubmitText("Retries with backoff"); err != nil {
		t.Fatalf("second answer: %v", err)
	}

	if session.State() != StateEvaluating {
		t.Fatalf("expected state %s, got %s", StateEvaluating, session.State())
	}

	if err := session.Evaluate(context.Background()); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	report, ok := session.Report()
	if !ok || report != "Score: 40/50" {
		t.Fatalf("unexpected report: %q (ok=%v)", report, ok)
	}

	snap := session.Snapshot()
	if snap.State != StateCompleted {
		t.Fatalf("expected state %s, got %s", StateCompleted, snap.State)
	}

	pairs := snap.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}

	if pairs[0].Answer.Text != "I used an LRU cache" || pairs[1].Answer.Text != "Retries with backoff" {
		t.Fatalf("answers out of order: %+v", pairs)
	}
}

func TestSessionStartGenerationFailure(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{
		responses: []string{"", "1. Why Go?"},
		errs:      []error{errors.New("backend unreachable"), nil},
	}

	session := newTestSession(t, generator, nil)

	err := session.Start(context.Background())
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}

	if session.State() != StateInitialized {
		t.Fatalf("expected state %s after failure, got %s", StateInitialized, session.State())
	}

	// The same transition may be re-invoked by the caller.
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("retry start: %v", err)
	}
}

func TestSessionStartNoQuestions(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{"I could not think of anything.\nSorry."}}
	session := newTestSession(t, generator, nil)

	err := session.Start(context.Background())
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}

	if _, ok := session.CurrentQuestion(); ok {
		t.Fatal("expected no current question")
	}
}

func TestSessionCursorInvariant(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{
		"1. One?\n2. Two?\n3. Three?",
	}}

	session := newTestSession(t, generator, nil)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := session.SubmitText("answer"); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}

		snap := session.Snapshot()
		if snap.Cursor != len(snap.Answers) || snap.Cursor != i {
			t.Fatalf("cursor invariant broken at %d: cursor=%d answers=%d", i, snap.Cursor, len(snap.Answers))
		}
	}
}

func TestSessionEmptyTextAnswerKeepsCursor(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{"1. Why Go?"}}

	session := newTestSession(t, generator, nil)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := session.SubmitText("   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}

	if snap := session.Snapshot(); snap.Cursor != 0 {
		t.Fatalf("expected cursor to stay at 0, got %d", snap.Cursor)
	}

	if err := session.SubmitText("concurrency"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestSessionVoiceAnswer(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{"1. Why Go?", "report"}}
	transcriber := &stubTranscriber{text: "my answer"}

	session := newTestSession(t, generator, transcriber)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := session.SubmitVoice(context.Background(), voiceArtifact()); err != nil {
		t.Fatalf("voice answer: %v", err)
	}

	snap := session.Snapshot()
	if snap.Answers[0].Modality != ModalityVoice || snap.Answers[0].Text != "my answer" {
		t.Fatalf("unexpected answer: %+v", snap.Answers[0])
	}
}

func TestSessionVoiceFailureKeepsCursor(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{"1. Why Go?"}}
	transcriber := &stubTranscriber{err: errors.New("malformed audio")}

	session := newTestSession(t, generator, transcriber)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := session.SubmitVoice(context.Background(), voiceArtifact()); !errors.Is(err, ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}

	if snap := session.Snapshot(); snap.Cursor != 0 {
		t.Fatalf("expected cursor to stay at 0, got %d", snap.Cursor)
	}

	// Fallback to text for the same question is allowed.
	if err := session.SubmitText("typed instead"); err != nil {
		t.Fatalf("text fallback: %v", err)
	}
}

func TestSessionEvaluateRequiresAllAnswers(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{"1. One?\n2. Two?"}}

	session := newTestSession(t, generator, nil)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := session.SubmitText("first"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if err := session.Evaluate(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestSessionEvaluateFailureIsRetryable(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{
		responses: []string{"1. Why Go?", "", "Score: 20/25"},
		errs:      []error{nil, errors.New("backend unreachable"), nil},
	}

	session := newTestSession(t, generator, nil)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := session.SubmitText("concurrency"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if err := session.Evaluate(context.Background()); !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}

	if _, ok := session.Report(); ok {
		t.Fatal("expected no report after a failed evaluation")
	}

	if err := session.Evaluate(context.Background()); err != nil {
		t.Fatalf("retry evaluate: %v", err)
	}

	if report, ok := session.Report(); !ok || report != "Score: 20/25" {
		t.Fatalf("unexpected report: %q (ok=%v)", report, ok)
	}
}

func TestSessionIsNotReusable(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{"1. Why Go?", "report"}}

	session := newTestSession(t, generator, nil)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := session.SubmitText("concurrency"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if err := session.Evaluate(context.Background()); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if err := session.Start(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for second start, got %v", err)
	}

	if err := session.SubmitText("late answer"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for late submit, got %v", err)
	}

	if err := session.Evaluate(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for second evaluate, got %v", err)
	}
}

func TestSessionDuplicateQuestionsKeepSeparateAnswers(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{
		"1. Why Go?\n2. Why Go?",
		"report",
	}}

	session := newTestSession(t, generator, nil)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := session.SubmitText("first answer"); err != nil {
		t.Fatalf("first answer: %v", err)
	}

	if err := session.SubmitText("second answer"); err != nil {
		t.Fatalf("second answer: %v", err)
	}

	snap := session.Snapshot()
	if snap.Answers[0].Text != "first answer" || snap.Answers[1].Text != "second answer" {
		t.Fatalf("duplicate questions collided: %+v", snap.Answers)
	}
}

func TestNewSessionValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewSession("   ", &scriptedGenerator{}, nil, zap.NewNop()); err == nil {
		t.Fatal("expected an error for an empty job description")
	}

	if _, err := NewSession("role", nil, nil, zap.NewNop()); err == nil {
		t.Fatal("expected an error for a nil generator")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	generator := &scriptedGenerator{responses: []string{"1. One?\n2. Two?"}}

	session := newTestSession(t, generator, nil)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := session.Snapshot()
	snap.Questions[0] = "mutated"

	if question, _ := session.CurrentQuestion(); question != "One?" {
		t.Fatalf("snapshot mutation leaked into the session: %q", question)
	}
}
