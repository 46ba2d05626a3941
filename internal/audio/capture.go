package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

const (
	defaultSampleRate = 16000
	defaultChannels   = 1

	readChunkSize = 4096
)

// ErrCaptureStopped is returned by Stop when the capture has already been
// finalized. A Capture is consumed exactly once.
var ErrCaptureStopped = errors.New("capture already stopped")

// Capture is a scoped recording session over an externally-owned PCM stream.
// A background goroutine accumulates buffers from the source until Stop is
// called; Stop finalizes the stream, concatenates the buffers and wraps them
// in a WAV container. The returned Artifact is complete: no partial-buffer
// audio ever leaves a running capture.
type Capture struct {
	source     io.ReadCloser
	finalize   func() error
	sampleRate int
	channels   int

	frames [][]byte
	done   chan struct{}

	stopOnce sync.Once
}

// Start begins accumulating 16-bit little-endian PCM from the source. The
// source is owned by the caller until Start returns, then by the capture
// until Stop.
func Start(source io.ReadCloser, sampleRate, channels int) (*Capture, error) {
	return start(source, nil, sampleRate, channels)
}

// StartRecorder launches the configured recorder command (for example
// "arecord -q -f S16_LE -r 16000 -c 1 -t raw") and captures its stdout as the
// PCM stream. Device ownership stays with the recorder process; Stop
// interrupts it and waits for it to exit.
func StartRecorder(cmdline string, sampleRate, channels int) (*Capture, error) {
	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		return nil, errors.New("recorder command is not configured")
	}

	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stderr = io.Discard

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recorder stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recorder: %w", err)
	}

	finalize := func() error {
		if cmd.Process != nil {
			// Interrupt lets the recorder flush and close its device.
			_ = cmd.Process.Signal(os.Interrupt)
		}
		// Exit status is irrelevant, the recorder is interrupted on purpose.
		_ = cmd.Wait()
		return nil
	}

	return start(stdout, finalize, sampleRate, channels)
}

func start(source io.ReadCloser, finalize func() error, sampleRate, channels int) (*Capture, error) {
	if source == nil {
		return nil, errors.New("capture source is required")
	}

	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}

	if channels <= 0 {
		channels = defaultChannels
	}

	c := &Capture{
		source:     source,
		finalize:   finalize,
		sampleRate: sampleRate,
		channels:   channels,
		done:       make(chan struct{}),
	}

	go c.readLoop()

	return c, nil
}

// readLoop is the only writer of c.frames; it exits when the source is
// closed or drained.
func (c *Capture) readLoop() {
	defer close(c.done)

	for {
		chunk := make([]byte, readChunkSize)
		n, err := c.source.Read(chunk)
		if n > 0 {
			c.frames = append(c.frames, chunk[:n])
		}
		if err != nil {
			return
		}
	}
}

// Stop finalizes the recording exactly once: it closes the source, waits for
// the reader goroutine to drain, and returns the accumulated audio as a WAV
// artifact. A second Stop returns ErrCaptureStopped. An artifact with zero
// samples is a valid result; rejecting it is the submitter's decision.
func (c *Capture) Stop() (*Artifact, error) {
	var artifact *Artifact

	called := false
	c.stopOnce.Do(func() {
		called = true

		_ = c.source.Close()
		if c.finalize != nil {
			_ = c.finalize()
		}
		<-c.done

		var size int
		for _, frame := range c.frames {
			size += len(frame)
		}

		pcm := make([]byte, 0, size)
		for _, frame := range c.frames {
			pcm = append(pcm, frame...)
		}

		artifact = &Artifact{
			Data:       encodeWAV(pcm, c.sampleRate, c.channels),
			SampleRate: c.sampleRate,
			Channels:   c.channels,
		}
	})

	if !called {
		return nil, ErrCaptureStopped
	}

	return artifact, nil
}
