package interview

// Modality is the medium of a candidate's answer.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityVoice Modality = "voice"
)

// Answer is a single collected response. For voice answers Text always holds
// the post-transcription text, never raw audio. Answers are frozen on creation.
type Answer struct {
	Modality Modality
	Text     string
}

// QA pairs a question with its collected answer.
type QA struct {
	Question string
	Answer   Answer
}

// State names a phase of the interview session.
type State string

const (
	// StateInitialized is the state before questions have been generated.
	StateInitialized State = "initialized"
	// StateCollecting covers the whole answer-collection phase. The cursor
	// in the snapshot identifies which question is being collected.
	StateCollecting State = "collecting"
	// StateEvaluating means all answers are present and the single
	// evaluation call is pending.
	StateEvaluating State = "evaluating"
	// StateCompleted is terminal. The report is available and the session
	// is not reusable.
	StateCompleted State = "completed"
)
