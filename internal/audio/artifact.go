package audio

import (
	"os"
	"time"
)

// Artifact is a finalized recording: a complete RIFF/WAV container produced
// by a stopped capture session. It is immutable once created.
type Artifact struct {
	// Data holds the full WAV file, header included.
	Data []byte

	SampleRate int
	Channels   int
}

// Empty reports whether the artifact carries no PCM samples.
func (a *Artifact) Empty() bool {
	return a == nil || len(a.Data) <= wavHeaderSize
}

// Duration returns the length of the recorded audio.
func (a *Artifact) Duration() time.Duration {
	if a.Empty() || a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}

	bytesPerSecond := a.SampleRate * a.Channels * bytesPerSample
	samples := len(a.Data) - wavHeaderSize

	return time.Duration(samples) * time.Second / time.Duration(bytesPerSecond)
}

// WriteFile persists the WAV container to the given path. Persistence is a
// caller concern; nothing in the interview pipeline requires it.
func (a *Artifact) WriteFile(path string) error {
	return os.WriteFile(path, a.Data, 0o644)
}
