// Package report renders a completed interview session into documents: a
// human-readable markdown report and a machine-readable YAML transcript.
// Rendering is presentation-only and never alters the evaluation content.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jd-interviewer/internal/interview"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Paths names the documents produced for one session.
type Paths struct {
	Markdown   string
	Transcript string
}

// Formatter writes session documents under a fixed output directory.
type Formatter struct {
	outputDir string
	logger    *zap.Logger
}

type transcriptEntry struct {
	Index    int    `yaml:"index"`
	Question string `yaml:"question"`
	Modality string `yaml:"modality"`
	Answer   string `yaml:"answer"`
}

type transcriptFile struct {
	SessionID  string            `yaml:"session_id"`
	CreatedAt  time.Time         `yaml:"created_at"`
	Answers    []transcriptEntry `yaml:"answers"`
	Evaluation string            `yaml:"evaluation"`
}

func NewFormatter(outputDir string, logger *zap.Logger) *Formatter {
	if outputDir == "" {
		outputDir = "."
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Formatter{outputDir: outputDir, logger: logger}
}

// Write renders the completed session to disk and returns the document paths.
func (f *Formatter) Write(snap interview.Snapshot) (*Paths, error) {
	if snap.State != interview.StateCompleted {
		return nil, errors.New("report requires a completed session")
	}

	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := &Paths{
		Markdown:   filepath.Join(f.outputDir, fmt.Sprintf("report-%s.md", snap.ID)),
		Transcript: filepath.Join(f.outputDir, fmt.Sprintf("transcript-%s.yaml", snap.ID)),
	}

	if err := os.WriteFile(paths.Markdown, []byte(RenderMarkdown(snap)), 0o644); err != nil {
		return nil, fmt.Errorf("write markdown report: %w", err)
	}

	transcript, err := renderTranscript(snap)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(paths.Transcript, transcript, 0o644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}

	f.logger.Info("report written",
		zap.String("markdown", paths.Markdown),
		zap.String("transcript", paths.Transcript),
	)

	return paths, nil
}

// RenderMarkdown produces the markdown report: one card per question/answer
// pair in question order, then the evaluation summary verbatim.
func RenderMarkdown(snap interview.Snapshot) string {
	var b strings.Builder

	b.WriteString("# Interview Evaluation Report\n\n")
	fmt.Fprintf(&b, "Session: %s\n", snap.ID)

	for i, pair := range snap.Pairs() {
		fmt.Fprintf(&b, "\n## Question %d\n\n", i+1)
		fmt.Fprintf(&b, "%s\n\n", pair.Question)
		fmt.Fprintf(&b, "**Response method:** %s\n\n", modalityLabel(pair.Answer.Modality))
		fmt.Fprintf(&b, "%s\n", pair.Answer.Text)
	}

	b.WriteString("\n## Final Evaluation Summary\n\n")
	b.WriteString(snap.Report)
	b.WriteString("\n")

	return b.String()
}

func renderTranscript(snap interview.Snapshot) ([]byte, error) {
	file := transcriptFile{
		SessionID:  snap.ID,
		CreatedAt:  time.Now().UTC(),
		Evaluation: snap.Report,
	}

	for i, pair := range snap.Pairs() {
		file.Answers = append(file.Answers, transcriptEntry{
			Index:    i + 1,
			Question: pair.Question,
			Modality: string(pair.Answer.Modality),
			Answer:   pair.Answer.Text,
		})
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	return data, nil
}

func modalityLabel(m interview.Modality) string {
	if m == interview.ModalityVoice {
		return "Voice (transcribed)"
	}

	return "Text"
}
