package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jd-interviewer/internal/interview"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func completedSnapshot() interview.Snapshot {
	return interview.Snapshot{
		ID:    "abc-123",
		State: interview.StateCompleted,
		Questions: []string{
			"Describe a caching strategy you used?",
			"How do you handle failures?",
		},
		Answers: []interview.Answer{
			{Modality: interview.ModalityText, Text: "I used an LRU cache"},
			{Modality: interview.ModalityVoice, Text: "Retries with backoff"},
		},
		Cursor: 2,
		Report: "Score: 40/50",
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	doc := RenderMarkdown(completedSnapshot())

	if !strings.HasPrefix(doc, "# Interview Evaluation Report\n") {
		t.Fatalf("unexpected document head: %q", doc[:40])
	}

	for _, want := range []string{
		"## Question 1",
		"Describe a caching strategy you used?",
		"**Response method:** Text",
		"## Question 2",
		"How do you handle failures?",
		"**Response method:** Voice (transcribed)",
		"## Final Evaluation Summary",
		"Score: 40/50",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected document to contain %q", want)
		}
	}

	// Sections appear in interview order with the summary last.
	q1 := strings.Index(doc, "## Question 1")
	q2 := strings.Index(doc, "## Question 2")
	summary := strings.Index(doc, "## Final Evaluation Summary")
	if !(q1 < q2 && q2 < summary) {
		t.Fatalf("sections out of order: q1=%d q2=%d summary=%d", q1, q2, summary)
	}
}

func TestWriteProducesBothDocuments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	formatter := NewFormatter(dir, zap.NewNop())

	paths, err := formatter.Write(completedSnapshot())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if paths.Markdown != filepath.Join(dir, "report-abc-123.md") {
		t.Fatalf("unexpected markdown path: %q", paths.Markdown)
	}

	if paths.Transcript != filepath.Join(dir, "transcript-abc-123.yaml") {
		t.Fatalf("unexpected transcript path: %q", paths.Transcript)
	}

	markdown, err := os.ReadFile(paths.Markdown)
	if err != nil {
		t.Fatalf("reading markdown: %v", err)
	}

	if string(markdown) != RenderMarkdown(completedSnapshot()) {
		t.Fatal("markdown file does not match the rendered report")
	}

	raw, err := os.ReadFile(paths.Transcript)
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}

	var transcript transcriptFile
	if err := yaml.Unmarshal(raw, &transcript); err != nil {
		t.Fatalf("parsing transcript: %v", err)
	}

	if transcript.SessionID != "abc-123" || transcript.Evaluation != "Score: 40/50" {
		t.Fatalf("unexpected transcript metadata: %+v", transcript)
	}

	if len(transcript.Answers) != 2 {
		t.Fatalf("expected 2 transcript entries, got %d", len(transcript.Answers))
	}

	second := transcript.Answers[1]
	if second.Index != 2 || second.Modality != "voice" || second.Answer != "Retries with backoff" {
		t.Fatalf("unexpected transcript entry: %+v", second)
	}
}

func TestWriteRequiresCompletedSession(t *testing.T) {
	t.Parallel()

	formatter := NewFormatter(t.TempDir(), zap.NewNop())

	snap := completedSnapshot()
	snap.State = interview.StateEvaluating

	if _, err := formatter.Write(snap); err == nil {
		t.Fatal("expected an error for an incomplete session")
	}
}

func TestWriteCreatesOutputDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports", "nested")
	formatter := NewFormatter(dir, zap.NewNop())

	if _, err := formatter.Write(completedSnapshot()); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected the output directory to exist: %v", err)
	}
}
