package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	// LiveEndpoint is the WebSocket endpoint for the Gemini Live API.
	LiveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContent"

	setupTimeout     = 30 * time.Second
	handshakeTimeout = 30 * time.Second
)

// LiveClient synthesizes speech over a Gemini Live API WebSocket session.
// The session is configured for audio-only responses with a prebuilt voice,
// so each Synthesize call is one user turn whose reply is a stream of PCM
// chunks ending in turnComplete.
type LiveClient struct {
	// WebSocket connection
	conn        *websocket.Conn
	connMutex   sync.Mutex
	initialized bool
	closed      bool

	// One synthesis turn at a time; the wire protocol has no turn IDs.
	turnMutex sync.Mutex

	// Context for managing the connection
	ctx    context.Context
	cancel context.CancelFunc

	// Authentication and model config
	apiKey string
	model  string
	voice  string

	endpoint string
}

// SetEndpoint overrides the WebSocket endpoint for testing purposes.
// This must be called before Initialize.
func (c *LiveClient) SetEndpoint(url string) {
	c.endpoint = url
}

// LiveSetupRequest represents the initial setup message for the Live API
type LiveSetupRequest struct {
	Setup LiveSetupConfig `json:"setup"`
}

// LiveSetupConfig contains configuration for the Live API session
type LiveSetupConfig struct {
	Model            string               `json:"model"`
	GenerationConfig LiveGenerationConfig `json:"generationConfig,omitempty"`
}

// LiveGenerationConfig contains generation parameters for the Live API
type LiveGenerationConfig struct {
	ResponseModalities []string          `json:"responseModalities,omitempty"`
	SpeechConfig       *LiveSpeechConfig `json:"speechConfig,omitempty"`
}

// LiveSpeechConfig configures speech output for audio responses
type LiveSpeechConfig struct {
	VoiceConfig *LiveVoiceConfig `json:"voiceConfig,omitempty"`
}

// LiveVoiceConfig configures the voice for audio responses
type LiveVoiceConfig struct {
	PrebuiltVoiceConfig *LivePrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

// LivePrebuiltVoiceConfig specifies a prebuilt voice
type LivePrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

// LiveContent represents content in a message
type LiveContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []LivePart `json:"parts"`
}

// LivePart represents a part of a message
type LivePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *LiveInlineData `json:"inlineData,omitempty"`
}

// LiveInlineData carries base64-encoded media bytes in a part
type LiveInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// LiveClientMessageRequest represents a client message to the Live API
type LiveClientMessageRequest struct {
	ClientContent *LiveClientContent `json:"clientContent,omitempty"`
}

// LiveClientContent contains the content of a client message
type LiveClientContent struct {
	Turns        []LiveContent `json:"turns"`
	TurnComplete bool          `json:"turnComplete"`
}

// LiveServerResponse represents a response from the Live API
type LiveServerResponse struct {
	ServerContent *LiveServerContent `json:"serverContent,omitempty"`
	SetupComplete *struct{}          `json:"setupComplete,omitempty"`
}

// LiveServerContent contains the content of a server response
type LiveServerContent struct {
	ModelTurn          *LiveContent `json:"modelTurn,omitempty"`
	TurnComplete       bool         `json:"turnComplete"`
	GenerationComplete bool         `json:"generationComplete"`
	Interrupted        bool         `json:"interrupted"`
}

// NewLiveClient creates a new client for the Gemini Live API
func NewLiveClient(ctx context.Context, apiKey, model, voice string) (*LiveClient, error) {
	if apiKey == "" {
		apiKey = ResolveAPIKey("")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for Live API")
	}
	if voice == "" {
		voice = DefaultVoice
	}

	ctxWithCancel, cancel := context.WithCancel(ctx)

	return &LiveClient{
		apiKey:   apiKey,
		model:    normalizeModel(model),
		voice:    voice,
		ctx:      ctxWithCancel,
		cancel:   cancel,
		endpoint: LiveEndpoint,
	}, nil
}

// Initialize connects to the WebSocket endpoint and performs initial setup
func (c *LiveClient) Initialize() error {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.initialized {
		return nil
	}

	if c.closed {
		return fmt.Errorf("client has been closed")
	}

	log.Printf("Connecting to Live API endpoint: %s", c.endpoint)
	header := http.Header{}
	header.Add("x-goog-api-key", c.apiKey)

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(c.ctx, c.endpoint, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to Live API: %v (HTTP status: %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("failed to connect to Live API: %v", err)
	}
	c.conn = conn

	if err := c.sendSetupMessage(); err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to send setup message: %v", err)
	}

	if err := c.waitForSetupComplete(); err != nil {
		c.conn.Close()
		return fmt.Errorf("setup failed: %v", err)
	}

	c.initialized = true
	log.Printf("Live API session established for model %s, voice %s", c.model, c.voice)
	return nil
}

// sendSetupMessage sends the initial setup message to the server
func (c *LiveClient) sendSetupMessage() error {
	setupReq := LiveSetupRequest{
		Setup: LiveSetupConfig{
			Model: c.model,
			GenerationConfig: LiveGenerationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &LiveSpeechConfig{
					VoiceConfig: &LiveVoiceConfig{
						PrebuiltVoiceConfig: &LivePrebuiltVoiceConfig{
							VoiceName: c.voice,
						},
					},
				},
			},
		},
	}

	setupJSON, err := json.Marshal(setupReq)
	if err != nil {
		return fmt.Errorf("failed to marshal setup message: %v", err)
	}

	log.Printf("Sending setup message: %s", string(setupJSON))
	return c.conn.WriteMessage(websocket.TextMessage, setupJSON)
}

// waitForSetupComplete reads messages until the server acknowledges setup.
func (c *LiveClient) waitForSetupComplete() error {
	setupCtx, cancel := context.WithTimeout(c.ctx, setupTimeout)
	defer cancel()

	err := c.readUntil(setupCtx, func(response *LiveServerResponse) bool {
		return response.SetupComplete != nil
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("setup timed out waiting for server response")
	}
	return err
}

// Synthesize sends text as a complete user turn and collects the audio
// parts of the model's reply until the turn completes.
func (c *LiveClient) Synthesize(ctx context.Context, text string) (*Audio, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}

	c.turnMutex.Lock()
	defer c.turnMutex.Unlock()

	if err := c.sendTurn(text); err != nil {
		return nil, err
	}

	var pcm []byte
	var mime string
	err := c.readUntil(ctx, func(response *LiveServerResponse) bool {
		if response.ServerContent == nil {
			return false
		}
		if turn := response.ServerContent.ModelTurn; turn != nil {
			for _, part := range turn.Parts {
				if part.InlineData == nil || !strings.HasPrefix(part.InlineData.MimeType, "audio/") {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					log.Printf("Warning: Failed to decode audio chunk: %v", err)
					continue
				}
				pcm = append(pcm, data...)
				if mime == "" {
					mime = part.InlineData.MimeType
				}
			}
		}
		return response.ServerContent.TurnComplete
	})
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}
	log.Printf("Received %d bytes of audio (%s)", len(pcm), mime)

	return &Audio{
		PCM:      pcm,
		Format:   formatFromMime(mime),
		MimeType: mime,
	}, nil
}

// sendTurn sends a single-part user turn with turnComplete set.
func (c *LiveClient) sendTurn(text string) error {
	msgReq := LiveClientMessageRequest{
		ClientContent: &LiveClientContent{
			Turns: []LiveContent{
				{
					Role: "user",
					Parts: []LivePart{
						{
							Text: text,
						},
					},
				},
			},
			TurnComplete: true,
		},
	}

	msgJSON, err := json.Marshal(msgReq)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}

	log.Printf("Sending turn (%d chars)", len(text))
	return c.conn.WriteMessage(websocket.TextMessage, msgJSON)
}

// readUntil reads and parses server messages until done reports true. A
// watchdog goroutine forces the blocked read to fail when ctx expires, since
// gorilla reads only honor deadlines, not contexts.
func (c *LiveClient) readUntil(ctx context.Context, done func(*LiveServerResponse) bool) error {
	c.conn.SetReadDeadline(time.Time{})

	finished := make(chan struct{})
	g := new(errgroup.Group)
	g.Go(func() error {
		select {
		case <-ctx.Done():
			c.conn.SetReadDeadline(time.Now())
			return ctx.Err()
		case <-finished:
			return nil
		}
	})
	g.Go(func() error {
		defer close(finished)
		for {
			_, message, err := c.conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return fmt.Errorf("connection closed")
				}
				return fmt.Errorf("failed to read from WebSocket: %v", err)
			}

			if os.Getenv("DEBUG_QUIZVOICE") != "" {
				log.Printf("Received message: %s", string(message))
			}

			var response LiveServerResponse
			if err := json.Unmarshal(message, &response); err != nil {
				return fmt.Errorf("failed to parse server message: %v", err)
			}

			if done(&response) {
				return nil
			}
		}
	})
	return g.Wait()
}

// Close closes the WebSocket connection
func (c *LiveClient) Close() error {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()

	if c.conn != nil {
		// Send close message
		err := c.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		if err != nil {
			log.Printf("Error sending close message: %v", err)
		}

		return c.conn.Close()
	}

	return nil
}

// ensureInitialized ensures the client is initialized
func (c *LiveClient) ensureInitialized() error {
	if c.closed {
		return fmt.Errorf("client has been closed")
	}

	if !c.initialized {
		return c.Initialize()
	}

	return nil
}

// IsLiveModel checks if a model name corresponds to a live model
func IsLiveModel(modelName string) bool {
	modelName = strings.ToLower(modelName)
	return strings.Contains(modelName, "live") &&
		(strings.Contains(modelName, "gemini-2.0") ||
			strings.Contains(modelName, "gemini-2.5"))
}
