package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jd-interviewer/internal/audio"

	"go.uber.org/zap"
)

func testArtifact() *audio.Artifact {
	return &audio.Artifact{Data: make([]byte, 128), SampleRate: 16000, Channels: 1}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, "ggml-base.en.bin", "en", zap.NewNop())
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return client
}

func TestNewNormalizesServerURL(t *testing.T) {
	t.Parallel()

	client, err := New("  http://localhost:8080/  ", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.serverURL != "http://localhost:8080" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", client.serverURL)
	}

	if _, err := New("   ", "", "", nil); err == nil {
		t.Fatal("expected an error for a blank server url")
	}
}

func TestTranscribeReturnsTrimmedText(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}

		if got := r.FormValue("response_format"); got != "json" {
			t.Errorf("expected response_format json, got %q", got)
		}

		if got := r.FormValue("language"); got != "en" {
			t.Errorf("expected language en, got %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing wav upload: %v", err)
		} else {
			file.Close()
			if header.Filename != "answer.wav" {
				t.Errorf("unexpected upload name %q", header.Filename)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  hello there \n"}`))
	})

	text, err := client.Transcribe(context.Background(), testArtifact())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "hello there" {
		t.Fatalf("expected trimmed transcript, got %q", text)
	}
}

func TestTranscribeBadStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := client.Transcribe(context.Background(), testArtifact())
	if err == nil || !strings.Contains(err.Error(), "bad status") {
		t.Fatalf("expected a bad status error, got %v", err)
	}
}

func TestTranscribeServerReportedError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "failed to decode audio"}`))
	})

	_, err := client.Transcribe(context.Background(), testArtifact())
	if err == nil || !strings.Contains(err.Error(), "failed to decode audio") {
		t.Fatalf("expected the server error to surface, got %v", err)
	}
}

func TestTranscribeRejectsEmptyArtifact(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty artifact")
	})

	if _, err := client.Transcribe(context.Background(), nil); err == nil {
		t.Fatal("expected an error for a nil artifact")
	}

	if _, err := client.Transcribe(context.Background(), &audio.Artifact{}); err == nil {
		t.Fatal("expected an error for an empty artifact")
	}
}
