package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newLiveTestServer starts a WebSocket server that hands the upgraded
// connection to handler. Handlers run in the server goroutine, so they
// report failures with t.Errorf, never t.Fatalf.
func newLiveTestServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") == "" {
			t.Error("Missing x-goog-api-key header")
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// acceptSetup reads the setup message and acknowledges it.
func acceptSetup(t *testing.T, conn *websocket.Conn) *LiveSetupRequest {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Errorf("Failed to read setup message: %v", err)
		return nil
	}
	var setup LiveSetupRequest
	if err := json.Unmarshal(msg, &setup); err != nil {
		t.Errorf("Failed to parse setup message: %v", err)
	}
	conn.WriteMessage(websocket.TextMessage, []byte(`{"setupComplete":{}}`))
	return &setup
}

func writeServerContent(t *testing.T, conn *websocket.Conn, pcm []byte, turnComplete bool) {
	resp := LiveServerResponse{
		ServerContent: &LiveServerContent{
			TurnComplete: turnComplete,
		},
	}
	if pcm != nil {
		resp.ServerContent.ModelTurn = &LiveContent{
			Parts: []LivePart{
				{InlineData: &LiveInlineData{
					MimeType: "audio/pcm;rate=24000",
					Data:     base64.StdEncoding.EncodeToString(pcm),
				}},
			},
		}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Errorf("Failed to marshal server response: %v", err)
		return
	}
	conn.WriteMessage(websocket.TextMessage, data)
}

func TestLiveSynthesize(t *testing.T) {
	srv := newLiveTestServer(t, func(conn *websocket.Conn) {
		setup := acceptSetup(t, conn)
		if setup == nil {
			return
		}
		if setup.Setup.Model != "models/test-model" {
			t.Errorf("Setup model = %q, want %q", setup.Setup.Model, "models/test-model")
		}
		modalities := setup.Setup.GenerationConfig.ResponseModalities
		if len(modalities) != 1 || modalities[0] != "AUDIO" {
			t.Errorf("Setup should request AUDIO responses, got %v", modalities)
		}
		speechCfg := setup.Setup.GenerationConfig.SpeechConfig
		if speechCfg == nil || speechCfg.VoiceConfig == nil || speechCfg.VoiceConfig.PrebuiltVoiceConfig == nil {
			t.Error("Setup is missing the voice config")
		} else if got := speechCfg.VoiceConfig.PrebuiltVoiceConfig.VoiceName; got != "Kore" {
			t.Errorf("Setup voice = %q, want %q", got, "Kore")
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("Failed to read turn message: %v", err)
			return
		}
		var turn LiveClientMessageRequest
		if err := json.Unmarshal(msg, &turn); err != nil {
			t.Errorf("Failed to parse turn message: %v", err)
			return
		}
		if turn.ClientContent == nil || !turn.ClientContent.TurnComplete {
			t.Error("Client turn should set turnComplete")
		}
		if len(turn.ClientContent.Turns) != 1 || turn.ClientContent.Turns[0].Parts[0].Text != "hello" {
			t.Errorf("Unexpected turn content: %+v", turn.ClientContent)
		}

		// Audio arrives in chunks; the last one carries turnComplete.
		writeServerContent(t, conn, []byte("abcd"), false)
		writeServerContent(t, conn, []byte("efgh"), true)

		// Keep the connection open until the client closes it.
		conn.ReadMessage()
	})

	client, err := NewLiveClient(context.Background(), "test-key", "test-model", "Kore")
	if err != nil {
		t.Fatalf("NewLiveClient failed: %v", err)
	}
	client.SetEndpoint(wsURL(srv))
	defer client.Close()

	audio, err := client.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio.PCM) != "abcdefgh" {
		t.Errorf("PCM chunks not accumulated in order: %q", audio.PCM)
	}
	if audio.Format.SampleRate != 24000 {
		t.Errorf("Sample rate = %d, want 24000", audio.Format.SampleRate)
	}
}

func TestLiveSynthesizeNoAudio(t *testing.T) {
	srv := newLiveTestServer(t, func(conn *websocket.Conn) {
		if acceptSetup(t, conn) == nil {
			return
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		writeServerContent(t, conn, nil, true)
		conn.ReadMessage()
	})

	client, err := NewLiveClient(context.Background(), "test-key", "test-model", "")
	if err != nil {
		t.Fatalf("NewLiveClient failed: %v", err)
	}
	client.SetEndpoint(wsURL(srv))
	defer client.Close()

	if _, err := client.Synthesize(context.Background(), "silent"); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Expected ErrNoAudio for audio-free turn, got %v", err)
	}
}

func TestLiveSynthesizeHonorsContext(t *testing.T) {
	srv := newLiveTestServer(t, func(conn *websocket.Conn) {
		if acceptSetup(t, conn) == nil {
			return
		}
		// Swallow the turn and never answer it.
		conn.ReadMessage()
		conn.ReadMessage()
	})

	client, err := NewLiveClient(context.Background(), "test-key", "test-model", "")
	if err != nil {
		t.Fatalf("NewLiveClient failed: %v", err)
	}
	client.SetEndpoint(wsURL(srv))
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.Synthesize(ctx, "stalled")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Synthesize did not unblock promptly after context expiry: %v", elapsed)
	}
}

func TestLiveClientRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GENERATIVE_AI_KEY", "")

	if _, err := NewLiveClient(context.Background(), "", "test-model", ""); err == nil {
		t.Error("Expected error when no API key is available")
	}
}

func TestLiveCloseIsIdempotent(t *testing.T) {
	client, err := NewLiveClient(context.Background(), "test-key", "test-model", "")
	if err != nil {
		t.Fatalf("NewLiveClient failed: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "after close"); err == nil {
		t.Error("Synthesize after Close should fail")
	}
}

func TestLiveSetupMessageUsesWireFieldNames(t *testing.T) {
	setup := LiveSetupRequest{
		Setup: LiveSetupConfig{
			Model: "models/test-model",
			GenerationConfig: LiveGenerationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &LiveSpeechConfig{
					VoiceConfig: &LiveVoiceConfig{
						PrebuiltVoiceConfig: &LivePrebuiltVoiceConfig{VoiceName: "Puck"},
					},
				},
			},
		},
	}

	data, err := json.Marshal(setup)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, key := range []string{`"setup"`, `"model"`, `"generationConfig"`, `"responseModalities"`, `"speechConfig"`, `"voiceConfig"`, `"prebuiltVoiceConfig"`, `"voiceName"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Setup JSON is missing %s: %s", key, data)
		}
	}
}

func TestIsLiveModel(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		expected bool
	}{
		{"Standard model", "gemini-1.5-flash", false},
		{"Standard model with prefix", "models/gemini-1.5-flash", false},
		{"Live model 2.0", "gemini-2.0-flash-live-001", true},
		{"Live model 2.0 with prefix", "models/gemini-2.0-flash-live-001", true},
		{"Live model 2.5", "gemini-2.5-flash-live", true},
		{"Live model 2.5 with prefix", "models/gemini-2.5-flash-live", true},
		{"Random model with live in name", "random-live-model", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLiveModel(tt.model); got != tt.expected {
				t.Errorf("IsLiveModel(%s) = %v, want %v", tt.model, got, tt.expected)
			}
		})
	}
}
