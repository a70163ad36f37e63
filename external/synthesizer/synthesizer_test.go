package synthesizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harshmriduhash/callbot/internal/synthesizer"
)

func TestNew_SelectsProvider(t *testing.T) {
	for _, provider := range []string{ProviderElevenLabs, ProviderOpenAI, ProviderAzure} {
		if _, err := New(Config{Provider: provider, APIKey: "key", Timeout: time.Second}); err != nil {
			t.Fatalf("unexpected error for %s: %v", provider, err)
		}
	}
}

func TestNew_UnknownProviderFailsAtConstruction(t *testing.T) {
	_, err := New(Config{Provider: "polly", APIKey: "key", Timeout: time.Second})
	if !errors.Is(err, synthesizer.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestElevenLabs_Synthesize(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	var gotBody elevenLabsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("xi-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte("mulaw-bytes"))
	}))
	defer server.Close()

	s := newElevenLabsSynthesizer("secret", "voice-1", server.Client())
	s.baseURL = server.URL

	audio, err := s.Synthesize(context.Background(), "Hello caller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mulaw-bytes" {
		t.Fatalf("unexpected audio: %q", audio)
	}
	if gotPath != "/text-to-speech/voice-1" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if !strings.Contains(gotQuery, "output_format=ulaw_8000") {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
	if gotKey != "secret" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	if gotBody.Text != "Hello caller" || gotBody.ModelID != elevenLabsModelID {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
}

func TestElevenLabs_DefaultVoice(t *testing.T) {
	s := newElevenLabsSynthesizer("secret", "", http.DefaultClient)
	if s.voiceID != elevenLabsDefaultVoiceID {
		t.Fatalf("unexpected default voice: %q", s.voiceID)
	}
}

func TestElevenLabs_NonOKStatusIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := newElevenLabsSynthesizer("secret", "voice-1", server.Client())
	s.baseURL = server.URL

	_, err := s.Synthesize(context.Background(), "Hello")
	if !errors.Is(err, synthesizer.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestOpenAI_Synthesize(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte("pcm-bytes"))
	}))
	defer server.Close()

	s := newOpenAISynthesizer("secret", server.Client())
	s.baseURL = server.URL

	audio, err := s.Synthesize(context.Background(), "Hello caller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "pcm-bytes" {
		t.Fatalf("unexpected audio: %q", audio)
	}
	if gotPath != "/audio/speech" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected authorization: %q", gotAuth)
	}
	if gotBody.Model != openAIModel || gotBody.Voice != openAIVoice || gotBody.Input != "Hello caller" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
}

func TestOpenAI_NonOKStatusIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newOpenAISynthesizer("secret", server.Client())
	s.baseURL = server.URL

	_, err := s.Synthesize(context.Background(), "Hello")
	if !errors.Is(err, synthesizer.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestAzure_AlwaysUnsupported(t *testing.T) {
	s := &azureSynthesizer{}
	_, err := s.Synthesize(context.Background(), "Hello")
	if !errors.Is(err, synthesizer.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}
