package interview

import "errors"

// Failure conditions for session transitions. Fatal conditions end the
// session; recoverable ones leave the cursor in place so the caller may
// retry the same question.
var (
	// ErrGeneration indicates the text-generation backend was unreachable
	// or returned an error. Fatal for the transition that needed it.
	ErrGeneration = errors.New("text generation unavailable")

	// ErrNoQuestions indicates that no usable questions could be extracted
	// from the generated text. Fatal, the session cannot start collecting.
	ErrNoQuestions = errors.New("no usable questions extracted")

	// ErrEmptyAnswer indicates a blank text answer. Recoverable, the caller
	// must re-prompt for the same question.
	ErrEmptyAnswer = errors.New("text answer is empty")

	// ErrTranscription indicates that voice transcription failed.
	// Recoverable, the caller may retry the recording or fall back to text.
	ErrTranscription = errors.New("voice transcription failed")

	// ErrMissingAudio indicates a voice submission without a finalized
	// recording. Recoverable, user-input error.
	ErrMissingAudio = errors.New("no finalized audio recording")

	// ErrInvalidState indicates an operation that is not legal in the
	// session's current state.
	ErrInvalidState = errors.New("operation not allowed in current session state")
)
